package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRejectsNilCallback(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "a.txt"), nil); !errors.Is(err, ErrNilCallback) {
		t.Errorf("New error = %v, want ErrNilCallback", err)
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New("/nonexistent/path/that/does/not/exist/a.txt", func(string) {})
	if !errors.Is(err, ErrPathNotExist) {
		t.Errorf("New error = %v, want ErrPathNotExist", err)
	}
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("[a]"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 10)
	w, err := New(path, func(p string) { changed <- p }, WithDelay(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	for _, s := range []string{"[b]", "[c]", "[d]"} {
		if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case p := <-changed:
		if p != w.Path() {
			t.Errorf("callback path = %q, want %q", p, w.Path())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	// The burst should collapse into a single notification.
	select {
	case <-changed:
		t.Error("expected writes to be coalesced")
	case <-time.After(200 * time.Millisecond):
	}
	if w.Changes() != 1 {
		t.Errorf("Changes() = %d, want 1", w.Changes())
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 1)
	w, err := New(path, func(p string) { changed <- p }, WithDelay(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-changed:
		t.Errorf("unexpected change for %q", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")

	changed := make(chan string, 1)
	w, err := New(path, func(p string) { changed <- p }, WithDelay(time.Hour))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	// Closing twice is harmless.
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if w.Changes() != 0 {
		t.Errorf("Changes() = %d after Close, want 0", w.Changes())
	}
}

func TestWatcherCloseWaitsForCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	w, err := New(path, func(string) {
		close(started)
		<-release
		finished.Store(true)
	}, WithDelay(time.Hour))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	// Fire as the debounce timer would.
	go w.fire()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for callback")
	}

	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while the callback was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for Close")
	}
	if !finished.Load() {
		t.Error("callback still running after Close returned")
	}
	if w.Changes() != 1 {
		t.Errorf("Changes() = %d, want 1", w.Changes())
	}

	// A timer that fires after Close does nothing.
	w.fire()
	if w.Changes() != 1 {
		t.Errorf("Changes() = %d after late fire, want 1", w.Changes())
	}
}
