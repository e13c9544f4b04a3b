package vlan

import "sync"

// bufferPool lends fixed-capacity datagram buffers to the capture and rewrite
// paths so steady-state forwarding does not allocate per packet.
type bufferPool struct {
	pool sync.Pool
}

func newBufferPool() *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, maxDatagram)
				return &b
			},
		},
	}
}

// Get returns a buffer of at least min bytes. Contents are unspecified.
func (p *bufferPool) Get(min int) []byte {
	if min > maxDatagram {
		return make([]byte, min)
	}
	return *p.pool.Get().(*[]byte)
}

// Put returns a buffer previously obtained from Get. The buffer must not be
// used after Put.
func (p *bufferPool) Put(b []byte) {
	if cap(b) < maxDatagram {
		return
	}
	b = b[:maxDatagram]
	p.pool.Put(&b)
}
