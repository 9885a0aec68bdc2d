package audit

import (
	"fmt"
	"time"
)

// Entry is a single audit line.
type Entry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Log is an append-only audit trail. Entries are never removed.
type Log struct {
	entries []Entry
	nowFunc func() time.Time
}

func NewLog() *Log {
	return &Log{nowFunc: time.Now}
}

// NewLogWithClock is NewLog with an injected clock.
func NewLogWithClock(now func() time.Time) *Log {
	return &Log{nowFunc: now}
}

// Appendf formats and appends a message.
func (l *Log) Appendf(format string, args ...any) {
	l.entries = append(l.entries, Entry{At: l.nowFunc(), Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of every entry in append order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines renders entries as "[YYYY-MM-DD] message".
func (l *Log) Lines() []string {
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, fmt.Sprintf("[%s] %s", e.At.Format("2006-01-02"), e.Message))
	}
	return out
}

func (l *Log) Len() int { return len(l.entries) }
