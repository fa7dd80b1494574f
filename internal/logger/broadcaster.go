package logger

import (
	"encoding/json"
	"sync"
)

const defaultBufferSize = 1000

// EventLogEntry is the websocket message type for streamed log lines.
const EventLogEntry = "logs:entry"

// Broadcaster is the interface for broadcasting messages.
type Broadcaster interface {
	Broadcast(msgType string, payload any) error
}

// LogEntry represents a parsed log entry for streaming.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LogBroadcaster implements io.Writer over zerolog's JSON output. Entries
// are kept in a ring buffer and forwarded to the hub when one is set.
type LogBroadcaster struct {
	hub    Broadcaster
	buffer *recentEntries
	mu     sync.RWMutex
}

// NewLogBroadcaster creates a new log broadcaster. Hub may be nil.
func NewLogBroadcaster(hub Broadcaster, bufferSize int) *LogBroadcaster {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &LogBroadcaster{
		hub:    hub,
		buffer: newRecentEntries(bufferSize),
	}
}

// SetHub sets the broadcaster hub for sending messages.
func (b *LogBroadcaster) SetHub(hub Broadcaster) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hub = hub
}

// Write implements io.Writer.
func (b *LogBroadcaster) Write(p []byte) (int, error) {
	entry, err := parseLogEntry(p)
	if err != nil {
		return len(p), nil //nolint:nilerr // malformed lines are dropped
	}

	b.buffer.push(entry)

	b.mu.RLock()
	hub := b.hub
	b.mu.RUnlock()

	if hub != nil {
		_ = hub.Broadcast(EventLogEntry, entry)
	}

	return len(p), nil
}

// GetRecentLogs returns all buffered log entries.
func (b *LogBroadcaster) GetRecentLogs() []LogEntry {
	return b.buffer.snapshot()
}

func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{Fields: make(map[string]any)}

	for key, dst := range map[string]*string{
		"time":      &entry.Timestamp,
		"level":     &entry.Level,
		"component": &entry.Component,
		"message":   &entry.Message,
	} {
		if v, ok := raw[key].(string); ok {
			*dst = v
			delete(raw, key)
		}
	}

	for k, v := range raw {
		entry.Fields[k] = v
	}

	return entry, nil
}
