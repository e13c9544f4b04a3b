package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battlelan.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
local_ip: 192.168.1.10
capture_port: 6112
source_ip: 192.168.1.10
receivers:
  - 10.0.0.2
  - 10.0.0.3
receivers_file: /etc/battlelan/receivers.txt
metrics_listen: ":9477"
pcap_file: /tmp/battlelan.pcap
logfile: /var/log/battlelan.log
foreground: true
verbose: true
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	want := &fileConfig{
		LocalIP:       "192.168.1.10",
		CapturePort:   6112,
		SourceIP:      "192.168.1.10",
		Receivers:     []string{"10.0.0.2", "10.0.0.3"},
		ReceiversFile: "/etc/battlelan/receivers.txt",
		MetricsListen: ":9477",
		PcapFile:      "/tmp/battlelan.pcap",
		Logfile:       "/var/log/battlelan.log",
		Foreground:    true,
		Verbose:       true,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("loadConfig = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "local_ip: 1.2.3.4\nreceviers:\n  - 10.0.0.2\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("config with misspelled key loaded, want error")
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	path := writeConfig(t, "capture_port: 70000\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("config with out-of-range port loaded, want error")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("loadConfig of missing file succeeded, want error")
	}
}

func TestLoadConfigEmpty(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig of empty file: %v", err)
	}
	if !reflect.DeepEqual(cfg, &fileConfig{}) {
		t.Errorf("empty config = %+v, want zero value", cfg)
	}
}
