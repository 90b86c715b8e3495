package sync

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/chat"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingOutbound records every publish request.
type recordingOutbound struct {
	mu       sync.Mutex
	messages []outMessage
	typing   []string
	reads    []string
	err      error
}

type outMessage struct {
	Sender, Receiver, Body, ID string
}

func (r *recordingOutbound) OnOutboundMessage(sender, receiver, body, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, outMessage{sender, receiver, body, id})
	return r.err
}

func (r *recordingOutbound) OnOutboundTyping(_, receiver string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typing = append(r.typing, receiver)
	return r.err
}

func (r *recordingOutbound) OnOutboundReadReceipt(_, _, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads = append(r.reads, id)
	return r.err
}

func testEngine(t *testing.T, opts ...Option) (*Engine, *recordingOutbound) {
	t.Helper()
	roster, err := chat.NewRoster(chat.DefaultCandidates(), "team5b")
	if err != nil {
		t.Fatal(err)
	}
	out := &recordingOutbound{}
	return NewEngine(roster, out, nil, nil, opts...), out
}

func TestOnMessageThenMarkRead(t *testing.T) {
	e, out := testEngine(t)

	if !e.OnMessage("x6", "hello", "id-1") {
		t.Fatal("OnMessage(x6) rejected a roster contact")
	}
	msgs, err := e.Messages("x6")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Direction != chat.Incoming || msgs[0].ID != "id-1" {
		t.Fatalf("messages = %+v, want one incoming id-1", msgs)
	}
	if got := unreadOf(e, "x6"); got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}

	ids, err := e.MarkConversationRead("x6")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ids, []string{"id-1"}) {
		t.Errorf("MarkConversationRead = %v, want [id-1]", ids)
	}
	if !slices.Equal(out.reads, []string{"id-1"}) {
		t.Errorf("published reads = %v, want [id-1]", out.reads)
	}
	if got := unreadOf(e, "x6"); got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}

	ids, _ = e.MarkConversationRead("x6")
	if len(ids) != 0 {
		t.Errorf("second MarkConversationRead = %v, want empty", ids)
	}
	if len(out.reads) != 1 {
		t.Errorf("published %d reads, want 1 (no duplicates)", len(out.reads))
	}
}

func TestSendReceiptLifecycle(t *testing.T) {
	e, out := testEngine(t)

	id, err := e.Send("x6", "hi")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(out.messages))
	}
	if got := out.messages[0]; got != (outMessage{"team5b", "x6", "hi", id}) {
		t.Errorf("published = %+v", got)
	}
	assertStatus(t, e, "x6", id, chat.StatusUnset)

	e.OnDelivered("x6", id)
	assertStatus(t, e, "x6", id, chat.StatusDelivered)

	e.OnRead("x6", id)
	assertStatus(t, e, "x6", id, chat.StatusRead)

	if e.OnDelivered("x6", id) {
		t.Error("stray delivered receipt reported a change")
	}
	assertStatus(t, e, "x6", id, chat.StatusRead)
}

func TestReadBeforeDelivered(t *testing.T) {
	e, _ := testEngine(t)
	id, _ := e.Send("x6", "hi")

	e.OnRead("x6", id)
	e.OnDelivered("x6", id)
	assertStatus(t, e, "x6", id, chat.StatusRead)
}

func TestReceiptFromWrongContactIgnored(t *testing.T) {
	e, _ := testEngine(t)
	id, _ := e.Send("x6", "hi")

	if e.OnDelivered("x5", id) {
		t.Error("receipt from a different contact changed x6's message")
	}
	assertStatus(t, e, "x6", id, chat.StatusUnset)
}

func TestUnknownSenderDropped(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("chat.", 10)
	defer unsub()

	roster, _ := chat.NewRoster(chat.DefaultCandidates(), "team5b")
	e := NewEngine(roster, &recordingOutbound{}, b, nil)

	if e.OnMessage("stranger", "hello", "id-1") {
		t.Error("OnMessage accepted an unknown sender")
	}
	if e.OnMessage("team5b", "hello", "id-2") {
		t.Error("OnMessage accepted self as sender")
	}
	for _, c := range e.Contacts() {
		if c.Unread != 0 {
			t.Errorf("contact %s has %d unread, want 0", c.ID, c.Unread)
		}
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected notification: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationsPublished(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("chat.", 10)
	defer unsub()

	roster, _ := chat.NewRoster(chat.DefaultCandidates(), "team5b")
	e := NewEngine(roster, &recordingOutbound{}, b, nil)

	e.OnMessage("x6", "hello", "id-1")

	select {
	case evt := <-ch:
		if evt.Kind != KindMessageReceived {
			t.Errorf("kind = %q, want %q", evt.Kind, KindMessageReceived)
		}
		change, ok := evt.Payload.(Change)
		if !ok {
			t.Fatalf("payload type = %T, want Change", evt.Payload)
		}
		if change.Contact != "x6" || change.MsgID != "id-1" {
			t.Errorf("change = %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for chat.message_received")
	}
}

func TestSendUnknownContact(t *testing.T) {
	e, out := testEngine(t)

	if _, err := e.Send("nobody", "hi"); !errors.Is(err, chat.ErrUnknownContact) {
		t.Errorf("Send error = %v, want ErrUnknownContact", err)
	}
	if _, err := e.NotifyTyping("nobody"); !errors.Is(err, chat.ErrUnknownContact) {
		t.Errorf("NotifyTyping error = %v, want ErrUnknownContact", err)
	}
	if _, err := e.MarkConversationRead("nobody"); !errors.Is(err, chat.ErrUnknownContact) {
		t.Errorf("MarkConversationRead error = %v, want ErrUnknownContact", err)
	}
	if len(out.messages)+len(out.typing)+len(out.reads) != 0 {
		t.Error("actions for an unknown contact published something")
	}
}

func TestSendPublishFailureKeepsMessage(t *testing.T) {
	e, out := testEngine(t)
	out.err = errors.New("broker down")

	id, err := e.Send("x6", "hi")
	if err != nil {
		t.Fatalf("Send error = %v, want nil (fire-and-forget)", err)
	}
	msgs, _ := e.Messages("x6")
	if len(msgs) != 1 || msgs[0].ID != id {
		t.Errorf("messages = %+v, want the sent message", msgs)
	}
}

func TestSendToAll(t *testing.T) {
	e, out := testEngine(t)

	ids := e.SendToAll("hello everyone")
	contacts := e.Contacts()
	if len(ids) != len(contacts) {
		t.Fatalf("got %d ids, want %d", len(ids), len(contacts))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %q", id)
		}
		seen[id] = true
	}
	for i, m := range out.messages {
		if m.Receiver != contacts[i].ID {
			t.Errorf("message %d went to %q, want %q", i, m.Receiver, contacts[i].ID)
		}
	}
}

func TestNotifyTypingDebounce(t *testing.T) {
	clock := newFakeClock()
	e, out := testEngine(t, WithClock(clock))

	sent, err := e.NotifyTyping("x6")
	if err != nil || !sent {
		t.Fatalf("first NotifyTyping = %v, %v; want true, nil", sent, err)
	}
	clock.Advance(time.Second)
	if sent, _ := e.NotifyTyping("x6"); sent {
		t.Error("second NotifyTyping within the window was published")
	}
	if len(out.typing) != 1 {
		t.Fatalf("published %d typing notices, want 1", len(out.typing))
	}

	clock.Advance(DefaultTypingWindow)
	if sent, _ := e.NotifyTyping("x6"); !sent {
		t.Error("NotifyTyping after the window was suppressed")
	}
	if len(out.typing) != 2 {
		t.Errorf("published %d typing notices, want 2", len(out.typing))
	}
}

func TestNotifyTypingPerContact(t *testing.T) {
	e, out := testEngine(t, WithClock(newFakeClock()))

	e.NotifyTyping("x6")
	e.NotifyTyping("x5")
	if !slices.Equal(out.typing, []string{"x6", "x5"}) {
		t.Errorf("typing = %v, want [x6 x5]", out.typing)
	}
}

func TestSendResetsTypingDebounce(t *testing.T) {
	e, out := testEngine(t, WithClock(newFakeClock()))

	e.NotifyTyping("x6")
	if _, err := e.Send("x6", "done"); err != nil {
		t.Fatal(err)
	}
	if sent, _ := e.NotifyTyping("x6"); !sent {
		t.Error("NotifyTyping right after Send was suppressed")
	}
	if len(out.typing) != 2 {
		t.Errorf("published %d typing notices, want 2", len(out.typing))
	}
}

func TestCustomTypingWindow(t *testing.T) {
	clock := newFakeClock()
	e, out := testEngine(t, WithClock(clock), WithTypingWindow(10*time.Second))

	e.NotifyTyping("x6")
	clock.Advance(5 * time.Second)
	e.NotifyTyping("x6")
	if len(out.typing) != 1 {
		t.Errorf("published %d typing notices, want 1", len(out.typing))
	}
}

func TestOnTypingObservedOnce(t *testing.T) {
	e, _ := testEngine(t)

	e.OnTyping("x5")
	conv, err := e.Conversation("x5")
	if err != nil {
		t.Fatal(err)
	}
	if !conv.Typing {
		t.Error("first Conversation() did not report typing")
	}
	if typing, _ := e.TakeTyping("x5"); typing {
		t.Error("typing hint not cleared after being observed")
	}
}

func TestContactsLabels(t *testing.T) {
	e, _ := testEngine(t)
	e.OnMessage("x6", "a", "1")
	e.OnMessage("x6", "b", "2")

	for _, c := range e.Contacts() {
		if c.ID == "x6" && c.Label != "x6(2)" {
			t.Errorf("label = %q, want x6(2)", c.Label)
		}
		if c.ID == "x5" && c.Label != "x5" {
			t.Errorf("label = %q, want x5", c.Label)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	e, _ := testEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			e.OnMessage("x6", "in", chat.NewID())
		}(i)
		go func() {
			defer wg.Done()
			_, _ = e.MarkConversationRead("x6")
			_ = e.Contacts()
		}()
	}
	wg.Wait()

	_, _ = e.MarkConversationRead("x6")
	if got := unreadOf(e, "x6"); got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
	msgs, _ := e.Messages("x6")
	if len(msgs) != 50 {
		t.Errorf("got %d messages, want 50", len(msgs))
	}
}

func unreadOf(e *Engine, contact string) int {
	for _, c := range e.Contacts() {
		if c.ID == contact {
			return c.Unread
		}
	}
	return -1
}

func assertStatus(t *testing.T, e *Engine, contact, id string, want chat.SendStatus) {
	t.Helper()
	msgs, err := e.Messages(contact)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range msgs {
		if m.ID == id {
			if m.Status != want {
				t.Errorf("status of %s = %v, want %v", id, m.Status, want)
			}
			return
		}
	}
	t.Fatalf("message %s not found", id)
}
