package sync

import "time"

// Clock abstracts the current time so debounce windows can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now.
func RealClock() Clock {
	return realClock{}
}
