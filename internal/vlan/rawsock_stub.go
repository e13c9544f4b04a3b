//go:build !linux && !windows

package vlan

import (
	"fmt"
	"runtime"
)

// stubSockets fails engine start on platforms without a raw capture facility.
type stubSockets struct{}

func platformSockets() sockets { return stubSockets{} }

func (stubSockets) Init() error {
	return fmt.Errorf("raw packet capture is not supported on %s: %w", runtime.GOOS, ErrPlatformInit)
}

func (stubSockets) Teardown() {}

func (stubSockets) OpenCapture(local [4]byte, port int) (captureConn, error) {
	return nil, fmt.Errorf("raw packet capture is not supported on %s: %w", runtime.GOOS, ErrPlatformInit)
}

func (stubSockets) OpenEgress() (egressConn, error) {
	return nil, fmt.Errorf("raw packet capture is not supported on %s: %w", runtime.GOOS, ErrPlatformInit)
}

func isAbortedRead(err error) bool { return false }
