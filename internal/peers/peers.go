// Package peers loads and stores the receiver list: a newline-delimited file
// of dotted-quad IPv4 addresses. The capture engine never touches this file;
// the control surface owns it.
package peers

import (
	"fmt"
	"net"
	"os"
	"strings"
)

// Load reads the receiver list at path. Blank lines and lines that do not
// parse as IPv4 addresses are skipped.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read receiver list %s: %w", path, err)
	}

	var addrs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ip := net.ParseIP(line)
		if ip == nil || ip.To4() == nil {
			continue
		}
		addrs = append(addrs, ip.To4().String())
	}
	return addrs, nil
}

// Save writes the receiver list to path, one dotted-quad per line.
func Save(path string, addrs []string) error {
	var b strings.Builder
	for _, addr := range addrs {
		b.WriteString(addr)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("cannot write receiver list %s: %w", path, err)
	}
	return nil
}
