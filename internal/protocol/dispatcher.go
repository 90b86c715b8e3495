package protocol

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Inbound receives decoded events. The sync engine implements it; each method
// reports whether the event was accepted.
type Inbound interface {
	Self() string
	OnMessage(sender, body, id string) bool
	OnDelivered(sender, id string) bool
	OnRead(sender, id string) bool
	OnTyping(sender string) bool
}

// Handler consumes raw transport messages. Transports deliver to it; the
// Dispatcher implements it.
type Handler interface {
	Handle(topic string, payload []byte)
}

// DropRecorder keeps a record of events that were dropped.
type DropRecorder interface {
	RecordDrop(topic, reason string, payload []byte) error
}

// Dispatcher routes raw transport messages to an Inbound handler. It also
// answers every accepted "message" event with a "delivered" receipt.
type Dispatcher struct {
	namespace string
	inbound   Inbound
	out       *Outbound
	drops     DropRecorder
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. drops may be nil.
func NewDispatcher(namespace string, inbound Inbound, out *Outbound, drops DropRecorder, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		namespace: namespace,
		inbound:   inbound,
		out:       out,
		drops:     drops,
		logger:    logger,
	}
}

// Handle processes one transport message. Errors are logged and recorded,
// never returned: a bad event must not stop the receive loop.
func (d *Dispatcher) Handle(topic string, payload []byte) {
	if err := d.handle(topic, payload); err != nil {
		d.drop(topic, payload, err)
	}
}

func (d *Dispatcher) handle(topic string, payload []byte) error {
	recipient, kind, err := ParseTopic(d.namespace, topic)
	if err != nil {
		return err
	}
	if !kind.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
	}
	self := d.inbound.Self()
	if recipient != self {
		return fmt.Errorf("event addressed to %q, not %q", recipient, self)
	}

	evt, err := Decode(kind, payload)
	if err != nil {
		return err
	}

	switch evt.Kind {
	case KindMessage:
		if !d.inbound.OnMessage(evt.Sender, evt.Body, evt.ID) {
			return fmt.Errorf("message from unknown sender %q", evt.Sender)
		}
		d.acknowledge(self, evt)
	case KindDelivered:
		d.inbound.OnDelivered(evt.Sender, evt.ID)
	case KindRead:
		d.inbound.OnRead(evt.Sender, evt.ID)
	case KindTyping:
		if !d.inbound.OnTyping(evt.Sender) {
			return fmt.Errorf("typing from unknown sender %q", evt.Sender)
		}
	}
	return nil
}

// acknowledge sends the delivered receipt back to the original sender,
// swapping sender and receiver.
func (d *Dispatcher) acknowledge(self string, evt Event) {
	if d.out == nil {
		return
	}
	if err := d.out.OnOutboundDelivered(self, evt.Sender, evt.ID); err != nil {
		d.logger.Error("failed to publish delivered receipt", zap.Error(err), zap.String("receiver", evt.Sender), zap.String("msg_id", evt.ID))
	}
}

func (d *Dispatcher) drop(topic string, payload []byte, err error) {
	reason := "rejected"
	var malformed *MalformedEventError
	switch {
	case errors.As(err, &malformed):
		reason = "malformed"
	case errors.Is(err, ErrUnknownEventKind):
		reason = "unknown_kind"
	}
	d.logger.Warn("dropping event", zap.String("topic", topic), zap.String("reason", reason), zap.Error(err))
	if d.drops == nil {
		return
	}
	if rerr := d.drops.RecordDrop(topic, reason+": "+err.Error(), payload); rerr != nil {
		d.logger.Error("failed to record dropped event", zap.Error(rerr), zap.String("topic", topic))
	}
}
