package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrUnknownEventKind is returned for topics whose kind suffix is not recognized.
var ErrUnknownEventKind = errors.New("unknown event kind")

// MalformedEventError describes a payload that failed to parse or validate.
type MalformedEventError struct {
	Kind Kind
	Err  error
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed %s event: %v", e.Kind, e.Err)
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}

// MessagePayload is the body of a "message" event.
type MessagePayload struct {
	Sender   string  `json:"sender" validate:"required"`
	Receiver string  `json:"receiver" validate:"required"`
	Message  *string `json:"message" validate:"required"`
	UUID     string  `json:"uuid" validate:"required"`
}

// ReceiptPayload is the body of "delivered" and "read" events. Sender is the
// participant acknowledging, i.e. the receiver of the original message.
type ReceiptPayload struct {
	Sender   string `json:"sender" validate:"required"`
	Receiver string `json:"receiver" validate:"required"`
	UUID     string `json:"uuid" validate:"required"`
}

// TypingPayload is the body of a "typing" event.
type TypingPayload struct {
	Sender   string `json:"sender" validate:"required"`
	Receiver string `json:"receiver" validate:"required"`
}

// Event is a decoded inbound event. Body and ID are empty where the kind has none.
type Event struct {
	Kind     Kind
	Sender   string
	Receiver string
	Body     string
	ID       string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses and validates the payload of an event of the given kind.
// Returns ErrUnknownEventKind or a *MalformedEventError.
func Decode(kind Kind, data []byte) (Event, error) {
	switch kind {
	case KindMessage:
		var p MessagePayload
		if err := decodeInto(kind, data, &p); err != nil {
			return Event{}, err
		}
		return Event{Kind: kind, Sender: p.Sender, Receiver: p.Receiver, Body: *p.Message, ID: p.UUID}, nil
	case KindDelivered, KindRead:
		var p ReceiptPayload
		if err := decodeInto(kind, data, &p); err != nil {
			return Event{}, err
		}
		return Event{Kind: kind, Sender: p.Sender, Receiver: p.Receiver, ID: p.UUID}, nil
	case KindTyping:
		var p TypingPayload
		if err := decodeInto(kind, data, &p); err != nil {
			return Event{}, err
		}
		return Event{Kind: kind, Sender: p.Sender, Receiver: p.Receiver}, nil
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
	}
}

func decodeInto(kind Kind, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &MalformedEventError{Kind: kind, Err: err}
	}
	if err := validate.Struct(v); err != nil {
		return &MalformedEventError{Kind: kind, Err: err}
	}
	return nil
}

// EncodeMessage returns the JSON payload of a "message" event.
func EncodeMessage(sender, receiver, body, id string) ([]byte, error) {
	return json.Marshal(MessagePayload{Sender: sender, Receiver: receiver, Message: &body, UUID: id})
}

// EncodeReceipt returns the JSON payload of a "delivered" or "read" event.
func EncodeReceipt(sender, receiver, id string) ([]byte, error) {
	return json.Marshal(ReceiptPayload{Sender: sender, Receiver: receiver, UUID: id})
}

// EncodeTyping returns the JSON payload of a "typing" event.
func EncodeTyping(sender, receiver string) ([]byte, error) {
	return json.Marshal(TypingPayload{Sender: sender, Receiver: receiver})
}
