package logger

import "sync"

// recentEntries keeps the last n log entries. Once full, each push
// replaces the oldest entry.
type recentEntries struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

func newRecentEntries(n int) *recentEntries {
	if n < 1 {
		n = 1
	}
	return &recentEntries{entries: make([]LogEntry, n)}
}

func (r *recentEntries) push(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// snapshot returns a copy of the kept entries, oldest first.
func (r *recentEntries) snapshot() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		return append([]LogEntry(nil), r.entries[:r.next]...)
	}
	out := make([]LogEntry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	return append(out, r.entries[:r.next]...)
}
