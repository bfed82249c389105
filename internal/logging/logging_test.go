package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesComponentFile(t *testing.T) {
	dir := t.TempDir()

	log, cleanup, err := New("host", Options{Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.WithField("tool", "file_read").Debug("hello")
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "host.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "component=host") || !strings.Contains(out, "tool=file_read") || !strings.Contains(out, "hello") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New("x", Options{Level: "chatty"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWithoutSinksDiscards(t *testing.T) {
	log, cleanup, err := New("quiet", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	log.Info("dropped")
}
