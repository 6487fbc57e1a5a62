package notify

import (
	"log"
	"strings"
	"sync"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// ParseSeverity returns the severity named by s (case-insensitive), or false
// if s is not one of the four known severities.
func ParseSeverity(s string) (Severity, bool) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case Success, Error, Info, Warning:
		return sev, true
	}
	return "", false
}

// Sink renders transient, user-facing messages.
type Sink interface {
	Notify(message string, severity Severity, duration time.Duration)
}

type SinkFunc func(message string, severity Severity, duration time.Duration)

func (f SinkFunc) Notify(message string, severity Severity, duration time.Duration) {
	f(message, severity, duration)
}

type logSink struct{}

func NewLogSink() Sink {
	return logSink{}
}

func (logSink) Notify(message string, severity Severity, duration time.Duration) {
	log.Printf("[%s] %s", severity, message)
}

type multi []Sink

// Multi fans every notification out to each of the given sinks, in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Notify(message string, severity Severity, duration time.Duration) {
	for _, s := range m {
		s.Notify(message, severity, duration)
	}
}

type Notification struct {
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Feed keeps the most recent notifications in a bounded buffer so they can be
// shown by a frontend polling the console backend.
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 50
	}
	return &Feed{
		items:    make([]Notification, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

func (f *Feed) Notify(message string, severity Severity, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if len(f.items) == f.capacity {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, Notification{
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	})
}

// All returns every buffered notification, oldest first.
func (f *Feed) All() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Active returns the notifications that have not yet expired at the given
// instant, oldest first.
func (f *Feed) Active(at time.Time) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		if at.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	return out
}
