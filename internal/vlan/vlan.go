// Package vlan implements the core of the battlelan broadcast relay: a
// capture engine that picks up UDP limited-broadcast datagrams from a raw
// socket, rewrites the IP and UDP headers for each configured receiver and
// retransmits the copies as unicasts on a header-included raw socket.
package vlan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mojo333/battlelan/internal/logger"
	"github.com/mojo333/battlelan/internal/netifaces"
)

// capturePort is the port the capture socket binds to. The value is arbitrary:
// the receive-all mode delivers datagrams regardless of port.
const capturePort = 6000

// stopTimeout bounds how long Stop waits for the capture task to drain.
const stopTimeout = 2 * time.Second

// receiveContexts is the number of capture buffers parked in the pool at
// start. The capture task keeps one receive in flight at a time.
const receiveContexts = 4

// Tap observes each accepted broadcast datagram before rewrite. A failing tap
// is disabled for the rest of the run; it never stops the capture loop.
type Tap interface {
	WritePacket(pkt []byte) error
}

// Config carries the engine options. The zero value is usable: the local
// address is auto-resolved and logging is discarded.
type Config struct {
	// LocalIP overrides the auto-resolved primary IPv4 address the capture
	// socket binds to.
	LocalIP string
	// CapturePort overrides the capture bind port (default 6000).
	CapturePort int
	// SourceIP, when set, restricts forwarding to datagrams whose IP source
	// address equals it.
	SourceIP string
	// Logger receives engine logging. Nil discards.
	Logger *logger.Logger
	// Metrics receives packet counters. Nil disables counting.
	Metrics *Metrics
	// Tap observes accepted datagrams. Nil disables.
	Tap Tap
}

// VirtualLAN is the capture engine. It owns both raw sockets, the capture
// task and the buffer pool. All lifecycle transitions are serialised under
// one mutex and are idempotent.
type VirtualLAN struct {
	cfg  Config
	log  *logger.Logger
	m    *Metrics
	pool *bufferPool

	receivers receiverSet

	srcFilter    [4]byte
	hasSrcFilter bool

	mu      sync.Mutex // guards the lifecycle state below
	running bool
	closed  bool
	sock    sockets
	capture captureConn
	egress  egressConn
	cancel  context.CancelFunc
	done    chan struct{}

	sendMu sync.Mutex // serialises all egress sends

	tapBroken bool // capture task only
}

// New constructs an engine in the stopped state with an empty receiver set.
func New(cfg Config) *VirtualLAN {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	v := &VirtualLAN{
		cfg:  cfg,
		log:  log,
		m:    cfg.Metrics,
		pool: newBufferPool(),
		sock: platformSockets(),
	}
	if cfg.SourceIP != "" {
		if ip4 := net.ParseIP(cfg.SourceIP).To4(); ip4 != nil {
			copy(v.srcFilter[:], ip4)
			v.hasSrcFilter = true
		} else {
			log.Warning("Ignoring invalid source filter address %q", cfg.SourceIP)
		}
	}
	return v
}

// AddReceiver inserts a dotted-quad peer address. It reports whether the
// address parsed; repeated adds of the same address are no-ops.
func (v *VirtualLAN) AddReceiver(ip string) bool { return v.receivers.Add(ip) }

// RemoveReceiver drops a peer address if present.
func (v *VirtualLAN) RemoveReceiver(ip string) { v.receivers.Remove(ip) }

// ClearReceivers empties the receiver set.
func (v *VirtualLAN) ClearReceivers() { v.receivers.Clear() }

// ListReceivers returns the dotted-quad rendering of the current receiver set.
func (v *VirtualLAN) ListReceivers() []string { return v.receivers.Strings() }

// IsRunning reports whether the capture engine is running.
func (v *VirtualLAN) IsRunning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// Start transitions the engine to running: platform init, capture socket in
// receive-all mode, header-included egress socket, capture task. Starting a
// running or closed engine is a no-op. On failure every resource acquired so
// far is released and the error carries one of the kinds in errors.go.
func (v *VirtualLAN) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.running || v.closed {
		return nil
	}

	if err := v.sock.Init(); err != nil {
		return err
	}

	local, err := v.localAddr()
	if err != nil {
		v.sock.Teardown()
		return err
	}

	port := v.cfg.CapturePort
	if port == 0 {
		port = capturePort
	}

	capture, err := v.sock.OpenCapture(local, port)
	if err != nil {
		v.sock.Teardown()
		return err
	}

	egress, err := v.sock.OpenEgress()
	if err != nil {
		capture.Close()
		v.sock.Teardown()
		return err
	}

	parked := make([][]byte, receiveContexts)
	for i := range parked {
		parked[i] = v.pool.Get(maxDatagram)
	}
	for _, b := range parked {
		v.pool.Put(b)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.capture = capture
	v.egress = egress
	v.cancel = cancel
	v.done = make(chan struct{})
	v.running = true
	v.tapBroken = false

	go v.captureLoop(ctx, capture, egress, v.done)

	v.log.Info("Capture engine running on %s:%d (%d receivers)",
		net.IP(local[:]), port, len(v.receivers.Snapshot()))
	return nil
}

// Stop transitions the engine to stopped: closes the capture socket
// (unblocking any in-flight receive), cancels the capture task and waits up
// to two seconds for it to drain. Teardown errors are swallowed. Stopping a
// stopped engine is a no-op.
func (v *VirtualLAN) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopLocked()
}

// Close stops the engine if needed, clears the receiver set and marks the
// engine unusable. Close is idempotent.
func (v *VirtualLAN) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.stopLocked()
	v.receivers.Clear()
	v.closed = true
}

func (v *VirtualLAN) stopLocked() {
	if !v.running {
		return
	}
	v.running = false

	v.capture.Close()
	v.cancel()

	select {
	case <-v.done:
	case <-time.After(stopTimeout):
		v.log.Warning("Capture task did not stop within %s, abandoning wait", stopTimeout)
	}

	v.egress.Close()
	v.sock.Teardown()
	v.capture = nil
	v.egress = nil
	v.cancel = nil

	v.log.Info("Capture engine stopped")
}

// localAddr resolves the IPv4 address the capture socket binds to.
func (v *VirtualLAN) localAddr() ([4]byte, error) {
	var local [4]byte
	if v.cfg.LocalIP != "" {
		ip4 := net.ParseIP(v.cfg.LocalIP).To4()
		if ip4 == nil {
			return local, fmt.Errorf("invalid local address %q: %w", v.cfg.LocalIP, ErrHostAddress)
		}
		copy(local[:], ip4)
		return local, nil
	}
	ip, err := netifaces.PrimaryIPv4()
	if err != nil {
		return local, fmt.Errorf("%w: %w", ErrHostAddress, err)
	}
	copy(local[:], ip)
	return local, nil
}

// captureLoop runs until the capture socket is closed or the context is
// cancelled. Per-packet failures are logged and do not terminate the loop.
func (v *VirtualLAN) captureLoop(ctx context.Context, capture captureConn, egress egressConn, done chan struct{}) {
	defer close(done)

	for {
		buf := v.pool.Get(maxDatagram)
		n, err := capture.Read(buf)
		if err != nil {
			v.pool.Put(buf)
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) || isAbortedRead(err) {
				return
			}
			v.log.Debug("Receive error: %s", err)
			continue
		}
		if n <= 0 {
			v.pool.Put(buf)
			continue
		}
		v.forward(egress, buf[:n])
		v.pool.Put(buf)
	}
}

// forward applies the broadcast filter to one captured datagram and fans it
// out to a snapshot of the receiver set.
func (v *VirtualLAN) forward(egress egressConn, pkt []byte) {
	v.m.captured()

	if len(pkt) < 20 {
		v.m.dropped(dropShort)
		return
	}
	if pkt[offProtocol] != protocolUDP {
		v.m.dropped(dropNotUDP)
		return
	}
	if [4]byte(pkt[offDstAddr:offDstAddr+4]) != broadcastAddr {
		v.m.dropped(dropNotBroadcast)
		return
	}
	if v.hasSrcFilter && [4]byte(pkt[offSrcAddr:offSrcAddr+4]) != v.srcFilter {
		v.m.dropped(dropSource)
		return
	}

	ihl := int(pkt[0]&0x0f) * 4
	if ihl < 20 || ihl+8 > len(pkt) {
		v.m.dropped(dropMalformed)
		return
	}
	udpLen := int(ReadUint16(pkt, ihl+4))
	if udpLen < 8 || ihl+udpLen > len(pkt) {
		v.m.dropped(dropMalformed)
		return
	}

	if v.cfg.Tap != nil && !v.tapBroken {
		if err := v.cfg.Tap.WritePacket(pkt); err != nil {
			v.tapBroken = true
			v.log.Warning("Packet tap failed, disabling: %s", err)
		}
	}

	srcPort := ReadUint16(pkt, ihl)
	dstPort := ReadUint16(pkt, ihl+2)

	for _, dst := range v.receivers.Snapshot() {
		if err := v.send(egress, dst, pkt, ihl, udpLen); err != nil {
			v.m.sendError()
			v.log.Debug("Error sending to %s: %s", net.IP(dst[:]), err)
			continue
		}
		v.m.forwarded()
		v.log.Debug("Relayed %d bytes from %s:%d to %s:%d",
			len(pkt), net.IP(pkt[offSrcAddr:offSrcAddr+4]), srcPort,
			net.IP(dst[:]), dstPort)
	}
}

// send copies the captured datagram into a rented buffer, rewrites the
// destination address, recomputes both checksums and transmits the result.
// Rented buffers are returned on every path.
func (v *VirtualLAN) send(egress egressConn, dst [4]byte, pkt []byte, ihl, udpLen int) error {
	buf := v.pool.Get(len(pkt))
	defer v.pool.Put(buf)
	m := buf[:len(pkt)]
	copy(m, pkt)

	copy(m[offDstAddr:offDstAddr+4], dst[:])

	m[offIPChecksum] = 0
	m[offIPChecksum+1] = 0
	PutUint16(m, offIPChecksum, IPv4Checksum(m[:ihl]))

	m[ihl+6] = 0
	m[ihl+7] = 0
	saddr := ReadUint32(m, offSrcAddr)
	daddr := ReadUint32(m, offDstAddr)

	payloadLen := udpLen - 8
	scratch := v.pool.Get(payloadLen)
	payload := scratch[:payloadLen]
	copy(payload, m[ihl+8:ihl+udpLen])
	PutUint16(m, ihl+6, UDPv4Checksum(saddr, daddr, m[ihl:ihl+8], uint16(udpLen), payload))
	v.pool.Put(scratch)

	v.sendMu.Lock()
	defer v.sendMu.Unlock()
	return egress.Send(m, dst)
}
