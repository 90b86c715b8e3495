package chat

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Direction tells whether a message was composed locally or received from a contact.
type Direction uint8

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// SendStatus is the receipt state of an outgoing message.
// Values are ordered: a status only ever moves to a later one.
type SendStatus uint8

const (
	StatusUnset SendStatus = iota
	StatusDelivered
	StatusRead
)

func (s SendStatus) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusRead:
		return "read"
	default:
		return ""
	}
}

// Message is one chat line. Identity fields never change after creation.
type Message struct {
	Sender    string
	Receiver  string
	Body      string
	ID        string
	Direction Direction

	// Status is only meaningful for outgoing messages.
	Status SendStatus
	// ReadLocally is only meaningful for incoming messages.
	ReadLocally bool
}

// Create builds a new outgoing message with a fresh id.
func Create(sender, receiver, body string) *Message {
	return &Message{
		Sender:    sender,
		Receiver:  receiver,
		Body:      body,
		ID:        NewID(),
		Direction: Outgoing,
	}
}

// Observe builds an incoming message from a remote event, keeping the sender's id.
func Observe(sender, receiver, body, id string) *Message {
	return &Message{
		Sender:    sender,
		Receiver:  receiver,
		Body:      body,
		ID:        id,
		Direction: Incoming,
	}
}

// NewID returns a random 32 character hex token.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// AdvanceStatus moves the send status forward. Returns false when s is not
// strictly later than the current status.
func (m *Message) AdvanceStatus(s SendStatus) bool {
	if s <= m.Status {
		return false
	}
	m.Status = s
	return true
}

// MarkReadLocally flags an incoming message as seen by the local user.
func (m *Message) MarkReadLocally() {
	m.ReadLocally = true
}

// Outgoing reports whether the message was composed locally.
func (m *Message) Outgoing() bool {
	return m.Direction == Outgoing
}

// String renders the message the way conversation panes show it.
func (m *Message) String() string {
	if m.Outgoing() && m.Status != StatusUnset {
		return m.Sender + ":\n  " + m.Body + "\n (" + m.Status.String() + ")"
	}
	return m.Sender + ":\n  " + m.Body
}
