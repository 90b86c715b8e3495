package sync

import "time"

// DefaultTypingWindow is the minimum gap between two typing notifications
// sent to the same contact.
const DefaultTypingWindow = 3 * time.Second

// Debouncer is a per-key rate gate: Allow returns true at most once per window
// for each key. It is not safe for concurrent use; the engine calls it under its lock.
type Debouncer struct {
	window time.Duration
	clock  Clock
	last   map[string]time.Time
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(window time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer{
		window: window,
		clock:  clock,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether an event for key may pass now, and records it if so.
func (d *Debouncer) Allow(key string) bool {
	now := d.clock.Now()
	if last, ok := d.last[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[key] = now
	return true
}

// Reset forgets the last event for key so the next Allow passes.
func (d *Debouncer) Reset(key string) {
	delete(d.last, key)
}

