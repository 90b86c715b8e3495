package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/mqchat/internal/bus"
)

// State is the connection state of the pub/sub transport.
type State string

const (
	Offline      State = "OFFLINE"
	Connecting   State = "CONNECTING"
	Online       State = "ONLINE"
	Reconnecting State = "RECONNECTING"
	Error        State = "ERROR"
)

// KindStatusChanged is the bus event kind published on every transition.
const KindStatusChanged = "transport.status_changed"

var validTransitions = map[State][]State{
	Offline:      {Connecting, Error},
	Connecting:   {Online, Reconnecting, Offline, Error},
	Online:       {Reconnecting, Offline},
	Reconnecting: {Online, Connecting, Offline, Error},
	Error:        {Connecting, Offline},
}

// Machine tracks and enforces transport state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a state machine starting Offline.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Offline,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state. Returns an error if the move is not allowed.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.NewEvent(KindStatusChanged, StatusChange{From: from, To: to}))
	}
	return nil
}

// Ensure transitions to target unless the machine is already there.
// Useful for transport callbacks that may repeat.
func (m *Machine) Ensure(target State) error {
	if m.Current() == target {
		return nil
	}
	return m.Transition(target)
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
