package anim

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsProfileWritesAndCloses(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	name := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(name, []byte("profiles: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != name {
			t.Fatalf("event = %q, want %q", got, name)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("write never reported")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// The pump goroutine owns the channels; both must close after shutdown
	// even if an event was mid-send.
	deadline := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, ok := <-w.Events:
			open = ok
		case <-deadline:
			t.Fatal("Events never closed after Close")
		}
	}
	select {
	case _, ok := <-w.Errors:
		if ok {
			t.Fatal("unexpected error after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Errors never closed after Close")
	}
}
