package bus

import "time"

// Event is a notification published on the bus. Kind is namespaced with a
// dot ("chat.receipt", "transport.status_changed") or, for the loopback
// transport, is a full pub/sub topic.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent returns an event stamped with the current time.
func NewEvent(kind string, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}
