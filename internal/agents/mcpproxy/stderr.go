package mcpproxy

import (
	"bytes"
	"strings"
	"sync"
)

const stderrLines = 200

// ringBuffer keeps the last lines a server process wrote to stderr.
type ringBuffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	count int
}

func newRingBuffer(size int) *ringBuffer {
	if size <= 0 {
		size = stderrLines
	}
	return &ringBuffer{lines: make([]string, size)}
}

func (r *ringBuffer) Add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.count < len(r.lines) {
		r.count++
	}
}

func (r *ringBuffer) Tail(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 0 || r.count == 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}

	start := (r.next - n + len(r.lines)) % len(r.lines)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = r.lines[(start+i)%len(r.lines)]
	}
	return out
}

// lineWriter splits a byte stream into lines for a ringBuffer. exec copies a
// child's stderr from a single goroutine, so pending needs no lock.
type lineWriter struct {
	buf     *ringBuffer
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimRight(string(w.pending[:i]), "\r"); line != "" {
			w.buf.Add(line)
		}
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}
