// Package pcapdump appends captured datagrams to a pcap file for offline
// inspection with wireshark/tcpdump.
package pcapdump

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// snapLen is the per-record capture limit, one whole IPv4 datagram.
const snapLen = 65536

// Writer writes raw IPv4 datagrams to a pcap file. Safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	f  *os.File
	w  *pcapgo.Writer
}

// New creates path (truncating) and writes the pcap file header with the raw
// IP link type, so records carry the IP header first with no ethernet frame.
func New(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create pcap file %s: %w", path, err)
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeRaw); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot write pcap header: %w", err)
	}
	return &Writer{f: f, w: w}, nil
}

// WritePacket appends one datagram.
func (w *Writer) WritePacket(pkt []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(pkt),
		Length:        len(pkt),
	}
	return w.w.WritePacket(ci, pkt)
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
