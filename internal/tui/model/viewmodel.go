package model

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	mqchatv1 "github.com/matheus3301/mqchat/internal/api/v1"
	"github.com/matheus3301/mqchat/internal/chat"
	"github.com/samber/lo"
)

// TypingHold is how long "<contact> is typing..." stays visible after the
// daemon reported the hint.
const TypingHold = 3 * time.Second

const flashDuration = 5 * time.Second

// ChatAPI is the subset of the daemon client the view model uses.
type ChatAPI interface {
	GetStatus(ctx context.Context, in *mqchatv1.GetStatusRequest) (*mqchatv1.GetStatusResponse, error)
	ListContacts(ctx context.Context, in *mqchatv1.ListContactsRequest) (*mqchatv1.ListContactsResponse, error)
	GetConversation(ctx context.Context, in *mqchatv1.GetConversationRequest) (*mqchatv1.GetConversationResponse, error)
	Send(ctx context.Context, in *mqchatv1.SendRequest) (*mqchatv1.SendResponse, error)
	SendToAll(ctx context.Context, in *mqchatv1.SendToAllRequest) (*mqchatv1.SendToAllResponse, error)
	NotifyTyping(ctx context.Context, in *mqchatv1.NotifyTypingRequest) (*mqchatv1.NotifyTypingResponse, error)
	MarkRead(ctx context.Context, in *mqchatv1.MarkReadRequest) (*mqchatv1.MarkReadResponse, error)
	WatchChanges(ctx context.Context, in *mqchatv1.WatchChangesRequest) (EventStream, error)
}

// EventStream yields forwarded daemon events.
type EventStream interface {
	Recv() (*mqchatv1.ChangeEvent, error)
}

// ViewModel caches daemon state for the views and signals refreshes.
type ViewModel struct {
	mu sync.RWMutex

	api          ChatAPI
	status       *mqchatv1.GetStatusResponse
	contacts     []mqchatv1.Contact
	conversation *mqchatv1.GetConversationResponse
	active       string
	typingUntil  time.Time
	Flash        Flash

	now       func() time.Time
	refreshCh chan struct{}
}

// NewViewModel creates a new view model connected to the daemon.
func NewViewModel(api ChatAPI) *ViewModel {
	return &ViewModel{
		api:       api,
		now:       time.Now,
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// LoadStatus fetches the daemon status.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	resp, err := vm.api.GetStatus(ctx, &mqchatv1.GetStatusRequest{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = resp
	vm.mu.Unlock()
	return nil
}

// LoadContacts fetches the contact list.
func (vm *ViewModel) LoadContacts(ctx context.Context) error {
	resp, err := vm.api.ListContacts(ctx, &mqchatv1.ListContactsRequest{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.contacts = resp.Contacts
	vm.mu.Unlock()
	return nil
}

// Open makes contact the active conversation.
func (vm *ViewModel) Open(contact string) {
	vm.mu.Lock()
	if vm.active != contact {
		vm.active = contact
		vm.conversation = nil
		vm.typingUntil = time.Time{}
	}
	vm.mu.Unlock()
	vm.signalRefresh()
}

// Active returns the open conversation's contact, or "".
func (vm *ViewModel) Active() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// LoadConversation fetches the active conversation and marks what it shows
// as read, which sends read receipts for newly seen messages.
func (vm *ViewModel) LoadConversation(ctx context.Context) error {
	contact := vm.Active()
	if contact == "" {
		return nil
	}
	conv, err := vm.api.GetConversation(ctx, &mqchatv1.GetConversationRequest{Contact: contact})
	if err != nil {
		return err
	}
	read := conv.Unread > 0
	if read {
		if _, err := vm.api.MarkRead(ctx, &mqchatv1.MarkReadRequest{Contact: contact}); err != nil {
			return err
		}
		// The snapshot predates MarkRead; an empty unread count drops the label suffix.
		conv.Unread = 0
		conv.Label = contact
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.active != contact {
		return nil
	}
	if read {
		vm.clearUnread(contact)
	}
	vm.conversation = conv
	if conv.Typing {
		vm.typingUntil = vm.now().Add(TypingHold)
	}
	return nil
}

func (vm *ViewModel) clearUnread(contact string) {
	contacts := slices.Clone(vm.contacts)
	for i := range contacts {
		if contacts[i].ID == contact {
			contacts[i].Unread = 0
			contacts[i].Label = contact
		}
	}
	vm.contacts = contacts
}

// Refresh reloads everything the views show.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	if err := vm.LoadStatus(ctx); err != nil {
		return err
	}
	if err := vm.LoadContacts(ctx); err != nil {
		return err
	}
	return vm.LoadConversation(ctx)
}

// Send sends text to the active conversation.
func (vm *ViewModel) Send(ctx context.Context, text string) error {
	contact := vm.Active()
	if contact == "" {
		return fmt.Errorf("no conversation open")
	}
	if _, err := vm.api.Send(ctx, &mqchatv1.SendRequest{Contact: contact, Body: text}); err != nil {
		return err
	}
	vm.mu.Lock()
	vm.typingUntil = time.Time{}
	vm.mu.Unlock()
	vm.signalRefresh()
	return nil
}

// SendToAll sends text to every contact.
func (vm *ViewModel) SendToAll(ctx context.Context, text string) error {
	resp, err := vm.api.SendToAll(ctx, &mqchatv1.SendToAllRequest{Body: text})
	if err != nil {
		return err
	}
	vm.Flash.Set(fmt.Sprintf("Sent to %d contacts", len(resp.IDs)), flashDuration)
	vm.signalRefresh()
	return nil
}

// NotifyTyping tells the active contact that the user is typing. The daemon
// rate limits the notifications, so this is safe to call on every keystroke.
// Failures are also flashed.
func (vm *ViewModel) NotifyTyping(ctx context.Context) error {
	contact := vm.Active()
	if contact == "" {
		return nil
	}
	if _, err := vm.api.NotifyTyping(ctx, &mqchatv1.NotifyTypingRequest{Contact: contact}); err != nil {
		vm.Flash.Error("Typing notice failed: "+err.Error(), flashDuration)
		return err
	}
	return nil
}

// Watch forwards daemon events as refresh signals until ctx ends. A broken
// stream is reopened after retry.
func (vm *ViewModel) Watch(ctx context.Context, retry time.Duration) {
	for {
		stream, err := vm.api.WatchChanges(ctx, &mqchatv1.WatchChangesRequest{})
		if err == nil {
			err = vm.drain(stream)
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil && err != io.EOF {
			vm.Flash.Error("Event stream lost: "+err.Error(), flashDuration)
		}
		select {
		case <-time.After(retry):
		case <-ctx.Done():
			return
		}
	}
}

func (vm *ViewModel) drain(stream EventStream) error {
	for {
		if _, err := stream.Recv(); err != nil {
			return err
		}
		vm.signalRefresh()
	}
}

// Status returns the last fetched transport status, or "" before the first load.
func (vm *ViewModel) Status() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.status == nil {
		return ""
	}
	return vm.status.Status
}

// Contacts returns a snapshot of the contact list.
func (vm *ViewModel) Contacts() []mqchatv1.Contact {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.contacts
}

// Conversation returns the active conversation's label and messages.
func (vm *ViewModel) Conversation() (string, []mqchatv1.Message) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.conversation == nil {
		return vm.active, nil
	}
	return vm.conversation.Label, vm.conversation.Messages
}

// TypingContact returns the active contact while its typing hint is shown, or "".
func (vm *ViewModel) TypingContact() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.active == "" || !vm.now().Before(vm.typingUntil) {
		return ""
	}
	return vm.active
}

// FindContact resolves an id or a display label such as "x6(2)" typed by
// the user.
func (vm *ViewModel) FindContact(name string) (string, bool) {
	id := chat.ContactFromLabel(strings.TrimSpace(name))
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	c, ok := lo.Find(vm.contacts, func(c mqchatv1.Contact) bool {
		return c.ID == id
	})
	return c.ID, ok
}
