package peers

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/mojo333/battlelan/internal/logger"
)

func TestLoadSkipsJunk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receivers.txt")
	content := "10.0.0.2\n\n  \nnot-an-ip\n192.168.1.3\nfe80::1\n256.1.1.1\n10.0.0.2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Load preserves order and does not dedupe; the receiver set does that.
	want := []string{"10.0.0.2", "192.168.1.3", "10.0.0.2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Load of missing file succeeded, want error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receivers.txt")
	want := []string{"10.0.0.2", "10.0.0.3", "192.168.1.77"}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}

func TestWatcherSeesRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "receivers.txt")
	if err := Save(path, []string{"10.0.0.2"}); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var last []string
	w := NewWatcher(path, func(addrs []string) {
		mu.Lock()
		defer mu.Unlock()
		last = addrs
	}, logger.Discard())
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := Save(path, []string{"10.0.0.2", "10.0.0.3"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(last)
		mu.Unlock()
		if n == 2 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher did not report the rewritten receiver list")
}

func TestWatcherStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receivers.txt")
	if err := Save(path, nil); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, func([]string) {}, nil)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()
	w.Stop()
}
