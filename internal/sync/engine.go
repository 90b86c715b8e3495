package sync

import (
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/chat"
	"go.uber.org/zap"
)

// Bus event kinds published when conversation state changes.
// Presentation subscribes to the "chat." namespace.
const (
	KindMessageReceived = "chat.message_received"
	KindMessageSent     = "chat.message_sent"
	KindReceipt         = "chat.receipt"
	KindTyping          = "chat.typing"
	KindRead            = "chat.read"
)

// Change is the payload of every "chat." bus event.
type Change struct {
	Contact string
	MsgID   string
}

// Outbound publishes local actions to the transport. Implementations must not
// block for long; the engine treats every call as fire-and-forget.
type Outbound interface {
	OnOutboundMessage(sender, receiver, body, id string) error
	OnOutboundTyping(sender, receiver string) error
	OnOutboundReadReceipt(sender, receiver, id string) error
}

// ContactSummary is a read-only view of one conversation for contact lists.
type ContactSummary struct {
	ID     string
	Label  string
	Unread int
	Typing bool
}

// Conversation is a read-only snapshot of one conversation.
type Conversation struct {
	Contact  string
	Label    string
	Messages []chat.Message
	Unread   int
	Typing   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTypingWindow overrides DefaultTypingWindow.
func WithTypingWindow(d time.Duration) Option {
	return func(e *Engine) { e.window = d }
}

// WithClock injects the time source used by the typing debouncer.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// Engine applies inbound transport events and local user actions to the
// roster's histories. All state is guarded by a single mutex; publishing and
// bus notifications happen after it is released.
type Engine struct {
	mu     sync.Mutex
	roster *chat.Roster
	typing *Debouncer

	out    Outbound
	bus    *bus.Bus
	logger *zap.Logger

	window time.Duration
	clock  Clock
}

// NewEngine creates a sync engine for roster. b may be nil when no one listens
// for changes.
func NewEngine(roster *chat.Roster, out Outbound, b *bus.Bus, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		roster: roster,
		out:    out,
		bus:    b,
		logger: logger,
		window: DefaultTypingWindow,
		clock:  RealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.typing = NewDebouncer(e.window, e.clock)
	return e
}

// Self returns the local identity.
func (e *Engine) Self() string {
	return e.roster.Self()
}

// OnMessage records a message received from sender. Messages from ids outside
// the roster are dropped. Returns true if the message was recorded.
func (e *Engine) OnMessage(sender, body, id string) bool {
	e.mu.Lock()
	h, ok := e.roster.HistoryFor(sender)
	if !ok {
		e.mu.Unlock()
		e.logger.Warn("dropping message from unknown sender", zap.String("sender", sender), zap.String("msg_id", id))
		return false
	}
	h.Append(chat.Observe(sender, e.roster.Self(), body, id))
	e.mu.Unlock()

	e.notify(KindMessageReceived, sender, id)
	return true
}

// OnDelivered applies a delivery receipt from sender for one of our messages.
func (e *Engine) OnDelivered(sender, id string) bool {
	return e.applyReceipt(sender, id, chat.StatusDelivered)
}

// OnRead applies a read receipt from sender for one of our messages.
func (e *Engine) OnRead(sender, id string) bool {
	return e.applyReceipt(sender, id, chat.StatusRead)
}

func (e *Engine) applyReceipt(sender, id string, s chat.SendStatus) bool {
	e.mu.Lock()
	h, ok := e.roster.HistoryFor(sender)
	if !ok {
		e.mu.Unlock()
		e.logger.Warn("dropping receipt from unknown sender", zap.String("sender", sender), zap.String("status", s.String()))
		return false
	}
	changed := h.ApplyReceipt(id, s)
	e.mu.Unlock()

	if changed {
		e.notify(KindReceipt, sender, id)
	}
	return changed
}

// OnTyping records that sender is composing a message.
func (e *Engine) OnTyping(sender string) bool {
	e.mu.Lock()
	h, ok := e.roster.HistoryFor(sender)
	if !ok {
		e.mu.Unlock()
		e.logger.Warn("dropping typing notice from unknown sender", zap.String("sender", sender))
		return false
	}
	h.SetTyping(true)
	e.mu.Unlock()

	e.notify(KindTyping, sender, "")
	return true
}

// Send appends a new outgoing message to receiver's history and publishes it.
// It does not wait for the transport; confirmation arrives later as receipts.
func (e *Engine) Send(receiver, body string) (string, error) {
	e.mu.Lock()
	h, ok := e.roster.HistoryFor(receiver)
	if !ok {
		e.mu.Unlock()
		return "", fmt.Errorf("send to %q: %w", receiver, chat.ErrUnknownContact)
	}
	m := chat.Create(e.roster.Self(), receiver, body)
	h.Append(m)
	e.typing.Reset(receiver)
	out := e.out
	e.mu.Unlock()

	if out != nil {
		if err := out.OnOutboundMessage(m.Sender, m.Receiver, m.Body, m.ID); err != nil {
			e.logger.Error("failed to publish message", zap.Error(err), zap.String("receiver", receiver), zap.String("msg_id", m.ID))
		}
	}
	e.notify(KindMessageSent, receiver, m.ID)
	return m.ID, nil
}

// SendToAll sends body to every contact, returning the ids in roster order.
func (e *Engine) SendToAll(body string) []string {
	contacts := e.roster.Contacts()
	ids := make([]string, 0, len(contacts))
	for _, c := range contacts {
		id, err := e.Send(c, body)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// NotifyTyping tells receiver that the local user is typing, at most once per
// typing window. Returns true if a notification was published.
func (e *Engine) NotifyTyping(receiver string) (bool, error) {
	e.mu.Lock()
	if _, ok := e.roster.HistoryFor(receiver); !ok {
		e.mu.Unlock()
		return false, fmt.Errorf("notify typing to %q: %w", receiver, chat.ErrUnknownContact)
	}
	allowed := e.typing.Allow(receiver)
	out := e.out
	e.mu.Unlock()

	if !allowed {
		return false, nil
	}
	if out != nil {
		if err := out.OnOutboundTyping(e.roster.Self(), receiver); err != nil {
			e.logger.Error("failed to publish typing notice", zap.Error(err), zap.String("receiver", receiver))
		}
	}
	return true, nil
}

// MarkConversationRead marks all unread messages from contact as read and
// publishes one read receipt per message. Returns the ids that were receipted.
func (e *Engine) MarkConversationRead(contact string) ([]string, error) {
	e.mu.Lock()
	h, ok := e.roster.HistoryFor(contact)
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("mark %q read: %w", contact, chat.ErrUnknownContact)
	}
	ids := h.DrainUnreadReceiptTargets()
	out := e.out
	e.mu.Unlock()

	if len(ids) == 0 {
		return ids, nil
	}
	if out != nil {
		self := e.roster.Self()
		for _, id := range ids {
			if err := out.OnOutboundReadReceipt(self, contact, id); err != nil {
				e.logger.Error("failed to publish read receipt", zap.Error(err), zap.String("receiver", contact), zap.String("msg_id", id))
			}
		}
	}
	e.notify(KindRead, contact, "")
	return ids, nil
}

// Contacts returns a summary of every conversation in roster order.
func (e *Engine) Contacts() []ContactSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	hs := e.roster.Histories()
	out := make([]ContactSummary, len(hs))
	for i, h := range hs {
		out[i] = ContactSummary{
			ID:     h.Contact,
			Label:  h.DisplayLabel(),
			Unread: h.Unread(),
			Typing: h.Typing(),
		}
	}
	return out
}

// Messages returns a snapshot of contact's conversation, oldest first.
func (e *Engine) Messages(contact string) ([]chat.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.roster.HistoryFor(contact)
	if !ok {
		return nil, fmt.Errorf("messages of %q: %w", contact, chat.ErrUnknownContact)
	}
	return h.Messages(), nil
}

// TakeTyping returns and clears contact's typing hint.
func (e *Engine) TakeTyping(contact string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.roster.HistoryFor(contact)
	if !ok {
		return false, fmt.Errorf("typing of %q: %w", contact, chat.ErrUnknownContact)
	}
	return h.TakeTyping(), nil
}

// Conversation returns a snapshot of contact's conversation. The typing hint
// counts as observed and is cleared.
func (e *Engine) Conversation(contact string) (Conversation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.roster.HistoryFor(contact)
	if !ok {
		return Conversation{}, fmt.Errorf("conversation with %q: %w", contact, chat.ErrUnknownContact)
	}
	return Conversation{
		Contact:  contact,
		Label:    h.DisplayLabel(),
		Messages: h.Messages(),
		Unread:   h.Unread(),
		Typing:   h.TakeTyping(),
	}, nil
}

func (e *Engine) notify(kind, contact, msgID string) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(bus.NewEvent(kind, Change{Contact: contact, MsgID: msgID}))
}
