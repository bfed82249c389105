package mcpproxy

import "testing"

func TestRingBufferTail(t *testing.T) {
	buf := newRingBuffer(3)

	buf.Add("a")
	buf.Add("b")
	if got := buf.Tail(2); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected tail: %v", got)
	}

	buf.Add("c")
	buf.Add("d")

	got := buf.Tail(5)
	expected := []string{"b", "c", "d"}
	if len(got) != len(expected) {
		t.Fatalf("expected %d lines, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("unexpected line %d: want %q got %q", i, expected[i], got[i])
		}
	}
	if empty := buf.Tail(0); empty != nil {
		t.Fatalf("expected nil for zero tail, got %v", empty)
	}
}

func TestLineWriterSplitsChunks(t *testing.T) {
	buf := newRingBuffer(10)
	w := &lineWriter{buf: buf}

	_, _ = w.Write([]byte("starting ser"))
	_, _ = w.Write([]byte("ver\r\n\nlistening on stdio\npart"))

	got := buf.Tail(10)
	if len(got) != 2 || got[0] != "starting server" || got[1] != "listening on stdio" {
		t.Fatalf("unexpected lines: %q", got)
	}
	if string(w.pending) != "part" {
		t.Fatalf("expected pending partial line, got %q", w.pending)
	}
}
