package pcapdump

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.pcap")

	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pkts := [][]byte{
		{0x45, 0x00, 0x00, 0x1c, 0x00, 0x01, 0x00, 0x00, 0x40, 0x11,
			0x00, 0x00, 0xc0, 0xa8, 0x01, 0x0a, 0xff, 0xff, 0xff, 0xff,
			0x13, 0x88, 0x17, 0x70, 0x00, 0x08, 0x00, 0x00},
		bytes.Repeat([]byte{0xab}, 1200),
	}
	for _, pkt := range pkts {
		if err := w.WritePacket(pkt); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.LinkType() != layers.LinkTypeRaw {
		t.Errorf("link type = %v, want %v", r.LinkType(), layers.LinkTypeRaw)
	}

	for i, want := range pkts {
		data, ci, err := r.ReadPacketData()
		if err != nil {
			t.Fatalf("ReadPacketData %d: %v", i, err)
		}
		if !bytes.Equal(data, want) {
			t.Errorf("record %d: %d bytes read back, differs from written", i, len(data))
		}
		if ci.CaptureLength != len(want) || ci.Length != len(want) {
			t.Errorf("record %d: capture info %d/%d, want %d", i, ci.CaptureLength, ci.Length, len(want))
		}
	}
}

func TestNewBadPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "dump.pcap")); err == nil {
		t.Error("New with missing directory succeeded, want error")
	}
}
