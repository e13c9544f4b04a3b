package vlan

// captureConn delivers whole IPv4 datagrams, header first. Read blocks until
// a datagram arrives or the socket is closed.
type captureConn interface {
	Read(buf []byte) (int, error)
	Close() error
}

// egressConn transmits complete IPv4 datagrams (header included) to a
// unicast destination.
type egressConn interface {
	Send(pkt []byte, dst [4]byte) error
	Close() error
}

// sockets is the per-platform raw socket facility. The default implementation
// is selected by build tags in rawsock_*.go; tests substitute in-memory fakes.
type sockets interface {
	// Init performs platform networking startup (Winsock on Windows).
	Init() error
	// OpenCapture creates the receive-all capture socket bound to
	// (local, port).
	OpenCapture(local [4]byte, port int) (captureConn, error)
	// OpenEgress creates the header-included send socket. It is never bound.
	OpenEgress() (egressConn, error)
	// Teardown undoes Init. Errors are swallowed.
	Teardown()
}
