package chat

import "strconv"

// History is the ordered conversation log with one contact.
// It is not safe for concurrent use; the sync engine serializes access.
type History struct {
	Contact string

	messages []*Message
	byID     map[string]*Message
	unread   int
	typing   bool
}

// NewHistory creates an empty history for contact.
func NewHistory(contact string) *History {
	return &History{
		Contact: contact,
		byID:    make(map[string]*Message),
	}
}

// Append adds m to the end of the log. Incoming messages count as unread.
func (h *History) Append(m *Message) {
	h.messages = append(h.messages, m)
	if _, ok := h.byID[m.ID]; !ok {
		h.byID[m.ID] = m
	}
	if m.Direction == Incoming {
		h.unread++
	}
}

// ApplyReceipt advances the status of the outgoing message with the given id.
// Unknown ids and incoming messages are ignored. Returns true if the status changed.
func (h *History) ApplyReceipt(id string, s SendStatus) bool {
	m, ok := h.byID[id]
	if !ok || !m.Outgoing() {
		return false
	}
	return m.AdvanceStatus(s)
}

// SetTyping sets the transient typing hint.
func (h *History) SetTyping(typing bool) {
	h.typing = typing
}

// Typing reports the typing hint without clearing it.
func (h *History) Typing() bool {
	return h.typing
}

// TakeTyping returns the typing hint and clears it.
func (h *History) TakeTyping() bool {
	t := h.typing
	h.typing = false
	return t
}

// Unread returns the number of incoming messages not read locally.
func (h *History) Unread() int {
	return h.unread
}

// DrainUnreadReceiptTargets marks every unread incoming message as read and
// returns their ids in log order. Returns nil when nothing was unread.
func (h *History) DrainUnreadReceiptTargets() []string {
	var ids []string
	for _, m := range h.messages {
		if m.Direction == Incoming && !m.ReadLocally {
			m.MarkReadLocally()
			ids = append(ids, m.ID)
		}
	}
	h.unread = 0
	return ids
}

// Messages returns copies of the log entries, oldest first.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	for i, m := range h.messages {
		out[i] = *m
	}
	return out
}

// DisplayLabel returns the contact name, suffixed with the unread count when non-zero.
func (h *History) DisplayLabel() string {
	if h.unread > 0 {
		return h.Contact + "(" + strconv.Itoa(h.unread) + ")"
	}
	return h.Contact
}

// ContactFromLabel strips an unread suffix produced by DisplayLabel.
func ContactFromLabel(label string) string {
	for i := 0; i < len(label); i++ {
		if label[i] == '(' {
			return label[:i]
		}
	}
	return label
}
