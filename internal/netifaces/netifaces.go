// Package netifaces resolves the local machine's IPv4 addresses for the
// capture socket bind.
package netifaces

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// InterfaceInfo holds the IPv4 information for a single interface address.
type InterfaceInfo struct {
	Name    string
	IP      net.IP
	Netmask net.IPMask
}

// Interfaces returns information about all IPv4-capable network interfaces.
func Interfaces() ([]InterfaceInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}

	var result []InterfaceInfo
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil {
				continue
			}
			result = append(result, InterfaceInfo{
				Name:    iface.Name,
				IP:      ip4,
				Netmask: ipnet.Mask,
			})
		}
	}

	return result, nil
}

// FindByName finds an interface by its OS name (e.g. "eth0").
func FindByName(name string) (*InterfaceInfo, error) {
	ifaces, err := Interfaces()
	if err != nil {
		return nil, err
	}
	for _, info := range ifaces {
		if info.Name == name {
			return &info, nil
		}
	}
	return nil, fmt.Errorf("interface %s not found", name)
}

// FindByIP finds an interface by its IPv4 address.
func FindByIP(ip string) (*InterfaceInfo, error) {
	ifaces, err := Interfaces()
	if err != nil {
		return nil, err
	}
	for _, info := range ifaces {
		if info.IP.String() == ip {
			return &info, nil
		}
	}
	return nil, fmt.Errorf("interface with IP %s not found", ip)
}

// PrimaryIPv4 returns the machine's primary IPv4 address: the first
// non-loopback IPv4 address the host name resolves to, falling back to the
// first non-loopback interface address.
func PrimaryIPv4() (net.IP, error) {
	if host, err := os.Hostname(); err == nil {
		if addrs, err := net.LookupIP(host); err == nil {
			for _, addr := range addrs {
				if ip4 := addr.To4(); ip4 != nil && !ip4.IsLoopback() {
					return ip4, nil
				}
			}
		}
	}

	ifaces, err := Interfaces()
	if err != nil {
		return nil, err
	}
	for _, info := range ifaces {
		if !info.IP.IsLoopback() {
			return info.IP, nil
		}
	}
	return nil, errors.New("no IPv4 address found on any interface")
}
