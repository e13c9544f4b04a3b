// battlelan forwards UDP limited-broadcast datagrams to a configured list of
// unicast peers so LAN-discovery games work across a VPN that does not carry
// broadcasts.
//
// https://github.com/mojo333/battlelan
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mojo333/battlelan/internal/logger"
	"github.com/mojo333/battlelan/internal/pcapdump"
	"github.com/mojo333/battlelan/internal/peers"
	"github.com/mojo333/battlelan/internal/vlan"
)

// stringSlice implements flag.Value for repeatable string flags.
type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ", ") }
func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var receivers stringSlice

	configFile := flag.String("config", "", "YAML config file.")
	localIP := flag.String("ip", "", "Local IPv4 address to capture on (default: auto-resolved).")
	capturePort := flag.Int("port", 0, "Capture socket bind port (default 6000).")
	sourceIP := flag.String("source", "", "Forward only broadcasts originated by this source address.")
	flag.Var(&receivers, "receiver", "Peer IPv4 address to forward broadcasts to (repeatable).")
	receiversFile := flag.String("receiversFile", "", "Newline-delimited receiver list file, reloaded on change.")
	metricsListen := flag.String("metricsListen", "", "Expose prometheus metrics on this address (e.g. :9477).")
	pcapFile := flag.String("pcap", "", "Dump accepted broadcasts to this pcap file.")
	logfile := flag.String("logfile", "", "Save logs to this file.")
	foreground := flag.Bool("foreground", false, "Log to stdout.")
	verbose := flag.Bool("verbose", false, "Enable verbose output.")
	flag.Parse()

	cfg := &fileConfig{}
	if *configFile != "" {
		loaded, err := loadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
			return 1
		}
		cfg = loaded
	}

	// Explicit flags win over the config file; --receiver adds to its list.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["ip"] {
		cfg.LocalIP = *localIP
	}
	if set["port"] {
		cfg.CapturePort = *capturePort
	}
	if set["source"] {
		cfg.SourceIP = *sourceIP
	}
	if set["receiver"] {
		cfg.Receivers = append(cfg.Receivers, receivers...)
	}
	if set["receiversFile"] {
		cfg.ReceiversFile = *receiversFile
	}
	if set["metricsListen"] {
		cfg.MetricsListen = *metricsListen
	}
	if set["pcap"] {
		cfg.PcapFile = *pcapFile
	}
	if set["logfile"] {
		cfg.Logfile = *logfile
	}
	if set["foreground"] {
		cfg.Foreground = *foreground
	}
	if set["verbose"] {
		cfg.Verbose = *verbose
	}

	if len(cfg.Receivers) == 0 && cfg.ReceiversFile == "" {
		fmt.Println("You should specify at least one receiver (--receiver or --receiversFile)")
		return 1
	}

	log, err := logger.New(cfg.Foreground, cfg.Logfile, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %s\n", err)
		return 1
	}
	defer log.Close()

	var tap vlan.Tap
	if cfg.PcapFile != "" {
		w, err := pcapdump.New(cfg.PcapFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening pcap dump: %s\n", err)
			return 1
		}
		defer w.Close()
		tap = w
	}

	metrics := vlan.NewMetrics()
	engine := vlan.New(vlan.Config{
		LocalIP:     cfg.LocalIP,
		CapturePort: cfg.CapturePort,
		SourceIP:    cfg.SourceIP,
		Logger:      log,
		Metrics:     metrics,
		Tap:         tap,
	})
	defer engine.Close()

	for _, addr := range cfg.Receivers {
		if !engine.AddReceiver(addr) {
			fmt.Fprintf(os.Stderr, "Invalid receiver address %q\n", addr)
			return 1
		}
	}

	if cfg.ReceiversFile != "" {
		addrs, err := peers.Load(cfg.ReceiversFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading receiver list: %s\n", err)
			return 1
		}
		for _, addr := range addrs {
			engine.AddReceiver(addr)
		}

		watcher := peers.NewWatcher(cfg.ReceiversFile, func(addrs []string) {
			engine.ClearReceivers()
			for _, addr := range addrs {
				engine.AddReceiver(addr)
			}
		}, log)
		if err := watcher.Start(); err != nil {
			log.Warning("Cannot watch receiver list: %s", err)
		} else {
			defer watcher.Stop()
		}
	}

	if cfg.MetricsListen != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error registering metrics: %s\n", err)
			return 1
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				log.Warning("Metrics server failed: %s", err)
			}
		}()
		log.Info("Serving metrics on %s/metrics", cfg.MetricsListen)
	}

	if err := engine.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting capture: %s\n", startHint(err))
		return 1
	}

	log.Info("Forwarding broadcasts to: %s", strings.Join(engine.ListReceivers(), ", "))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	engine.Stop()
	return 0
}

// startHint decorates a start error with the user action for its kind.
func startHint(err error) string {
	switch {
	case errors.Is(err, vlan.ErrPrivilege):
		return fmt.Sprintf("%s (run elevated)", err)
	case errors.Is(err, vlan.ErrHostAddress):
		return fmt.Sprintf("%s (check the machine has an IPv4 address, or pass --ip)", err)
	case errors.Is(err, vlan.ErrBind):
		return fmt.Sprintf("%s (port in use or interface down; try --port)", err)
	default:
		return err.Error()
	}
}
