//go:build windows

package vlan

import (
	"errors"
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Winsock constants not exposed by x/sys/windows. sioRcvAll is the SIO_RCVALL
// ioctl code; ipHdrIncl is the IP_HDRINCL option telling the kernel the caller
// supplies the full IPv4 header on send.
const (
	sioRcvAll = 0x98000001
	ipHdrIncl = 2
)

// windowsSockets implements the raw socket facility with Winsock raw sockets
// and the SIO_RCVALL receive-all ioctl.
type windowsSockets struct{}

func platformSockets() sockets { return windowsSockets{} }

func (windowsSockets) Init() error {
	var data windows.WSAData
	if err := windows.WSAStartup(uint32(0x202), &data); err != nil {
		return fmt.Errorf("cannot initialise Winsock: %w: %w", ErrPlatformInit, err)
	}
	return nil
}

func (windowsSockets) Teardown() {
	windows.WSACleanup()
}

func (windowsSockets) OpenCapture(local [4]byte, port int) (captureConn, error) {
	h, err := windows.Socket(windows.AF_INET, windows.SOCK_RAW, windows.IPPROTO_IP)
	if err != nil {
		return nil, fmt.Errorf("cannot create capture socket: %w: %w", ErrPrivilege, err)
	}

	sa := &windows.SockaddrInet4{Port: port}
	copy(sa.Addr[:], local[:])
	if err := windows.Bind(h, sa); err != nil {
		windows.Closesocket(h)
		return nil, fmt.Errorf("cannot bind capture socket to %s:%d: %w: %w",
			net.IP(local[:]), port, ErrBind, err)
	}

	// Receive every IPv4 datagram on the bound interface regardless of port.
	var in uint32 = 1
	var returned uint32
	err = windows.WSAIoctl(h, sioRcvAll,
		(*byte)(unsafe.Pointer(&in)), uint32(unsafe.Sizeof(in)),
		nil, 0, &returned, nil, 0)
	if err != nil {
		windows.Closesocket(h)
		return nil, fmt.Errorf("cannot enable SIO_RCVALL: %w: %w", ErrPrivilege, err)
	}

	return &winCapture{h: h}, nil
}

func (windowsSockets) OpenEgress() (egressConn, error) {
	h, err := windows.Socket(windows.AF_INET, windows.SOCK_RAW, windows.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("cannot create egress socket: %w: %w", ErrPrivilege, err)
	}
	if err := windows.SetsockoptInt(h, windows.IPPROTO_IP, ipHdrIncl, 1); err != nil {
		windows.Closesocket(h)
		return nil, fmt.Errorf("cannot enable IP_HDRINCL: %w: %w", ErrPrivilege, err)
	}
	return &winEgress{h: h}, nil
}

type winCapture struct {
	h windows.Handle
}

func (c *winCapture) Read(buf []byte) (int, error) {
	n, _, err := windows.Recvfrom(c.h, buf, 0)
	return n, err
}

func (c *winCapture) Close() error { return windows.Closesocket(c.h) }

type winEgress struct {
	h windows.Handle
}

func (e *winEgress) Send(pkt []byte, dst [4]byte) error {
	sa := &windows.SockaddrInet4{}
	copy(sa.Addr[:], dst[:])
	return windows.Sendto(e.h, pkt, 0, sa)
}

func (e *winEgress) Close() error { return windows.Closesocket(e.h) }

// isAbortedRead reports whether a capture read error means the socket was
// torn down rather than a transient failure. Closesocket aborts a pending
// Recvfrom with one of these.
func isAbortedRead(err error) bool {
	return errors.Is(err, windows.WSAEINTR) ||
		errors.Is(err, windows.WSAENOTSOCK) ||
		errors.Is(err, windows.WSAECONNABORTED) ||
		errors.Is(err, windows.ERROR_OPERATION_ABORTED)
}
