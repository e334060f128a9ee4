package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSizeLimitedWriterTruncatesAtCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	w, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer w.Close()
	w.maxBytes = 64

	if _, err := w.Write(bytes.Repeat([]byte("a"), 40)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := w.Write(bytes.Repeat([]byte("b"), 40)); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) != 40 || data[0] != 'b' {
		t.Fatalf("expected file reset before second write, got %d bytes starting %q", len(data), data[:1])
	}
}

func TestSizeLimitedWriterReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	w, err := newSizeLimitedWriter(path, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := w.Write([]byte("after close")); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	_ = w.Close()
}
