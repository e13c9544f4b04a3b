//go:build linux

package vlan

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// linuxSockets implements the raw socket facility with AF_INET raw sockets.
// There is no SIO_RCVALL on Linux; a SOCK_RAW/IPPROTO_UDP socket already
// delivers every inbound UDP datagram on the interface with the IP header
// intact, which is the receive-all contract the engine needs.
type linuxSockets struct{}

func platformSockets() sockets { return linuxSockets{} }

func (linuxSockets) Init() error { return nil }

func (linuxSockets) Teardown() {}

func (linuxSockets) OpenCapture(local [4]byte, port int) (captureConn, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("cannot create capture socket: %w: %w", ErrPrivilege, err)
	}
	unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], local[:])
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("cannot bind capture socket to %s:%d: %w: %w",
			net.IP(local[:]), port, ErrBind, err)
	}

	// Hand the fd to the runtime poller so Close unblocks a pending Read.
	f := os.NewFile(uintptr(fd), "battlelan-capture")
	pc, err := net.FilePacketConn(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("cannot register capture socket: %w: %w", ErrPlatformInit, err)
	}
	return &linuxCapture{pc: pc}, nil
}

func (linuxSockets) OpenEgress() (egressConn, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_RAW)
	if err != nil {
		return nil, fmt.Errorf("cannot create egress socket: %w: %w", ErrPrivilege, err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_HDRINCL, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("cannot enable IP_HDRINCL: %w: %w", ErrPrivilege, err)
	}
	return &fdEgress{fd: fd}, nil
}

type linuxCapture struct {
	pc net.PacketConn
}

func (c *linuxCapture) Read(buf []byte) (int, error) {
	n, _, err := c.pc.ReadFrom(buf)
	return n, err
}

func (c *linuxCapture) Close() error { return c.pc.Close() }

type fdEgress struct {
	fd int
}

func (e *fdEgress) Send(pkt []byte, dst [4]byte) error {
	sa := &unix.SockaddrInet4{}
	copy(sa.Addr[:], dst[:])
	return unix.Sendto(e.fd, pkt, 0, sa)
}

func (e *fdEgress) Close() error { return unix.Close(e.fd) }

// isAbortedRead reports whether a capture read error means the socket was
// torn down rather than a transient failure.
func isAbortedRead(err error) bool {
	return errors.Is(err, unix.EBADF) || errors.Is(err, unix.ECANCELED)
}
