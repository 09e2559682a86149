// Package runlog captures formatted log output in memory so it can be
// written to a file when the crawl finishes. The recorder is scoped to a
// single crawl invocation rather than living as process state, which keeps
// multiple crawls in one process independent of each other.
package runlog

import (
	"strings"
	"sync"
)

// Recorder is an io.Writer that stores each write as one log line.
// zerolog delivers one complete event per Write call, so a line-per-write
// model holds as long as the recorder sits directly under the logger.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Write implements io.Writer.
func (r *Recorder) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")

	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()

	return len(p), nil
}

// Lines returns a snapshot of the recorded log lines in append order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Len reports how many lines have been recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}
