package supervisor

import (
	"strings"
	"sync"
	"time"
)

// DefaultLogCapacity is the number of output lines kept per supervisor.
const DefaultLogCapacity = 100

// LogEntry is one line of process output.
type LogEntry struct {
	Time   time.Time `json:"time" yaml:"time"`
	Stream string    `json:"stream" yaml:"stream"`
	Line   string    `json:"line" yaml:"line"`
}

// logRing keeps the newest entries up to a fixed capacity.
type logRing struct {
	mu      sync.Mutex
	entries []LogEntry
	head    int
	size    int
}

func newLogRing(capacity int) *logRing {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &logRing{entries: make([]LogEntry, capacity)}
}

func (r *logRing) add(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := (r.head + r.size) % len(r.entries)
	r.entries[idx] = e
	if r.size < len(r.entries) {
		r.size++
		return
	}
	r.head = (r.head + 1) % len(r.entries)
}

// snapshot returns the entries oldest first. The slice is owned by the caller.
func (r *logRing) snapshot() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LogEntry, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.entries[(r.head+i)%len(r.entries)]
	}
	return out
}

// lineSplitter turns arbitrary chunks into complete lines, carrying any
// trailing partial line into the next call.
type lineSplitter struct {
	partial string
}

func (s *lineSplitter) feed(chunk string) []string {
	data := s.partial + chunk
	parts := strings.Split(data, "\n")
	s.partial = parts[len(parts)-1]

	lines := make([]string, 0, len(parts)-1)
	for _, l := range parts[:len(parts)-1] {
		l = strings.TrimRight(l, "\r")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func (s *lineSplitter) flush() string {
	l := strings.TrimRight(s.partial, "\r")
	s.partial = ""
	return l
}
