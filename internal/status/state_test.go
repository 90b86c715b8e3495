package status

import (
	"testing"

	"github.com/matheus3301/mqchat/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Offline {
		t.Errorf("initial state = %s, want OFFLINE", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Offline, Connecting},
		{Offline, Error},
		{Connecting, Online},
		{Connecting, Error},
		{Online, Reconnecting},
		{Online, Offline},
		{Reconnecting, Online},
		{Error, Connecting},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Online); err == nil {
		t.Error("Transition(OFFLINE -> ONLINE) should fail; must go through CONNECTING")
	}
	if m.Current() != Offline {
		t.Errorf("state = %s, want OFFLINE (unchanged)", m.Current())
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Online)
	if err := m.Ensure(Online); err != nil {
		t.Errorf("Ensure(ONLINE) while ONLINE error = %v", err)
	}
	if err := m.Ensure(Reconnecting); err != nil {
		t.Errorf("Ensure(RECONNECTING) error = %v", err)
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("transport.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Connecting); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != KindStatusChanged {
		t.Errorf("event kind = %q, want %s", evt.Kind, KindStatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Offline || change.To != Connecting {
		t.Errorf("change = %v -> %v, want OFFLINE -> CONNECTING", change.From, change.To)
	}
}

// TestConnectionLossCycle walks the reconnect loop driven by the MQTT client:
// OFFLINE → CONNECTING → ONLINE → RECONNECTING → ONLINE → OFFLINE
func TestConnectionLossCycle(t *testing.T) {
	m := NewMachine(nil)
	steps := []State{Connecting, Online, Reconnecting, Online, Offline}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
}

func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Offline:      {},
		Connecting:   {Connecting},
		Online:       {Connecting, Online},
		Reconnecting: {Connecting, Online, Reconnecting},
		Error:        {Error},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
