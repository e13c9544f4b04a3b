package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the flag set; flags that were explicitly set on the
// command line override file values, except --receiver, whose addresses are
// added to the file's receivers list.
type fileConfig struct {
	LocalIP       string   `yaml:"local_ip"`
	CapturePort   int      `yaml:"capture_port"`
	SourceIP      string   `yaml:"source_ip"`
	Receivers     []string `yaml:"receivers"`
	ReceiversFile string   `yaml:"receivers_file"`
	MetricsListen string   `yaml:"metrics_listen"`
	PcapFile      string   `yaml:"pcap_file"`
	Logfile       string   `yaml:"logfile"`
	Foreground    bool     `yaml:"foreground"`
	Verbose       bool     `yaml:"verbose"`
}

// loadConfig parses a YAML config file. Unknown keys are rejected.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	if cfg.CapturePort < 0 || cfg.CapturePort > 65535 {
		return nil, fmt.Errorf("config %s: capture_port %d out of range", path, cfg.CapturePort)
	}
	return &cfg, nil
}
