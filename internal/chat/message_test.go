package chat

import "testing"

func TestCreate(t *testing.T) {
	m := Create("team5b", "x6", "hi")
	if m.Direction != Outgoing {
		t.Errorf("direction = %s, want outgoing", m.Direction)
	}
	if m.Status != StatusUnset {
		t.Errorf("status = %v, want unset", m.Status)
	}
	if len(m.ID) != 32 {
		t.Errorf("id = %q, want 32 hex chars", m.ID)
	}
	if other := Create("team5b", "x6", "hi"); other.ID == m.ID {
		t.Errorf("two created messages share id %q", m.ID)
	}
}

func TestObserve(t *testing.T) {
	m := Observe("x6", "team5b", "hello", "id-1")
	if m.Direction != Incoming || m.ID != "id-1" || m.ReadLocally {
		t.Errorf("observed = %+v, want incoming id-1 unread", m)
	}
}

func TestAdvanceStatusMonotone(t *testing.T) {
	tests := []struct {
		name  string
		steps []SendStatus
		want  SendStatus
	}{
		{"none", nil, StatusUnset},
		{"delivered", []SendStatus{StatusDelivered}, StatusDelivered},
		{"delivered then read", []SendStatus{StatusDelivered, StatusRead}, StatusRead},
		{"read then delivered", []SendStatus{StatusRead, StatusDelivered}, StatusRead},
		{"read skips delivered", []SendStatus{StatusRead}, StatusRead},
		{"duplicates", []SendStatus{StatusDelivered, StatusDelivered, StatusDelivered}, StatusDelivered},
		{"unset is ignored", []SendStatus{StatusDelivered, StatusUnset}, StatusDelivered},
		{"read delivered read", []SendStatus{StatusRead, StatusDelivered, StatusRead}, StatusRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Create("a", "b", "body")
			for _, s := range tt.steps {
				m.AdvanceStatus(s)
			}
			if m.Status != tt.want {
				t.Errorf("status = %v, want %v", m.Status, tt.want)
			}
		})
	}
}

func TestAdvanceStatusReportsChange(t *testing.T) {
	m := Create("a", "b", "body")
	if !m.AdvanceStatus(StatusDelivered) {
		t.Error("unset -> delivered should report a change")
	}
	if m.AdvanceStatus(StatusDelivered) {
		t.Error("delivered -> delivered should not report a change")
	}
}

func TestMessageString(t *testing.T) {
	m := Create("team5b", "x6", "hi")
	if got, want := m.String(), "team5b:\n  hi"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	m.AdvanceStatus(StatusRead)
	if got, want := m.String(), "team5b:\n  hi\n (read)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
