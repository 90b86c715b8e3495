package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	mqchatv1 "github.com/matheus3301/mqchat/internal/api/v1"
	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/chat"
	"github.com/matheus3301/mqchat/internal/status"
	"github.com/matheus3301/mqchat/internal/store"
	intsync "github.com/matheus3301/mqchat/internal/sync"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// Bus prefixes forwarded by WatchChanges.
var watchPrefixes = []string{"chat.", "transport."}

const watchBuffer = 256

// DropJournal is the read side of the drop journal.
type DropJournal interface {
	ListDrops(limit int) ([]store.Drop, error)
	DropCount() (int64, error)
}

// Info describes the daemon for GetStatus.
type Info struct {
	Identity  string
	Namespace string
	Broker    string
}

// ChatService implements the ChatService gRPC service over the sync engine.
type ChatService struct {
	mqchatv1.UnimplementedChatServiceServer

	info    Info
	engine  *intsync.Engine
	machine *status.Machine
	drops   DropJournal
	bus     *bus.Bus
	logger  *zap.Logger
	started time.Time
}

// NewChatService creates a new chat service. drops may be nil.
func NewChatService(info Info, engine *intsync.Engine, machine *status.Machine, drops DropJournal, b *bus.Bus, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		info:    info,
		engine:  engine,
		machine: machine,
		drops:   drops,
		bus:     b,
		logger:  logger,
		started: time.Now(),
	}
}

func (s *ChatService) GetStatus(_ context.Context, _ *mqchatv1.GetStatusRequest) (*mqchatv1.GetStatusResponse, error) {
	contacts := s.engine.Contacts()
	resp := &mqchatv1.GetStatusResponse{
		Identity:      s.info.Identity,
		Namespace:     s.info.Namespace,
		Broker:        s.info.Broker,
		Status:        string(s.machine.Current()),
		Contacts:      len(contacts),
		Unread:        lo.SumBy(contacts, func(c intsync.ContactSummary) int { return c.Unread }),
		StartedUnixMs: s.started.UnixMilli(),
	}
	if s.bus != nil {
		resp.MissedEvents = s.bus.Dropped()
	}
	if s.drops != nil {
		n, err := s.drops.DropCount()
		if err != nil {
			return nil, grpcstatus.Errorf(codes.Internal, "count drops: %v", err)
		}
		resp.Drops = n
	}
	return resp, nil
}

func (s *ChatService) ListContacts(_ context.Context, _ *mqchatv1.ListContactsRequest) (*mqchatv1.ListContactsResponse, error) {
	contacts := lo.Map(s.engine.Contacts(), func(c intsync.ContactSummary, _ int) mqchatv1.Contact {
		return mqchatv1.Contact{ID: c.ID, Label: c.Label, Unread: c.Unread, Typing: c.Typing}
	})
	return &mqchatv1.ListContactsResponse{Contacts: contacts}, nil
}

func (s *ChatService) GetConversation(_ context.Context, req *mqchatv1.GetConversationRequest) (*mqchatv1.GetConversationResponse, error) {
	if req.Contact == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "contact is required")
	}
	conv, err := s.engine.Conversation(req.Contact)
	if err != nil {
		return nil, toStatus(err)
	}
	return &mqchatv1.GetConversationResponse{
		Contact:  conv.Contact,
		Label:    conv.Label,
		Messages: lo.Map(conv.Messages, func(m chat.Message, _ int) mqchatv1.Message { return messageToWire(m) }),
		Unread:   conv.Unread,
		Typing:   conv.Typing,
	}, nil
}

func (s *ChatService) Send(_ context.Context, req *mqchatv1.SendRequest) (*mqchatv1.SendResponse, error) {
	if req.Contact == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "contact is required")
	}
	id, err := s.engine.Send(req.Contact, req.Body)
	if err != nil {
		return nil, toStatus(err)
	}
	return &mqchatv1.SendResponse{ID: id}, nil
}

func (s *ChatService) SendToAll(_ context.Context, req *mqchatv1.SendToAllRequest) (*mqchatv1.SendToAllResponse, error) {
	return &mqchatv1.SendToAllResponse{IDs: s.engine.SendToAll(req.Body)}, nil
}

func (s *ChatService) NotifyTyping(_ context.Context, req *mqchatv1.NotifyTypingRequest) (*mqchatv1.NotifyTypingResponse, error) {
	if req.Contact == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "contact is required")
	}
	sent, err := s.engine.NotifyTyping(req.Contact)
	if err != nil {
		return nil, toStatus(err)
	}
	return &mqchatv1.NotifyTypingResponse{Sent: sent}, nil
}

func (s *ChatService) MarkRead(_ context.Context, req *mqchatv1.MarkReadRequest) (*mqchatv1.MarkReadResponse, error) {
	if req.Contact == "" {
		return nil, grpcstatus.Error(codes.InvalidArgument, "contact is required")
	}
	ids, err := s.engine.MarkConversationRead(req.Contact)
	if err != nil {
		return nil, toStatus(err)
	}
	return &mqchatv1.MarkReadResponse{IDs: ids}, nil
}

func (s *ChatService) ListDrops(_ context.Context, req *mqchatv1.ListDropsRequest) (*mqchatv1.ListDropsResponse, error) {
	if s.drops == nil {
		return &mqchatv1.ListDropsResponse{}, nil
	}
	drops, err := s.drops.ListDrops(req.Limit)
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "list drops: %v", err)
	}
	total, err := s.drops.DropCount()
	if err != nil {
		return nil, grpcstatus.Errorf(codes.Internal, "count drops: %v", err)
	}
	return &mqchatv1.ListDropsResponse{
		Drops: lo.Map(drops, func(d store.Drop, _ int) mqchatv1.Drop {
			return mqchatv1.Drop{
				Topic:           d.Topic,
				Reason:          d.Reason,
				Payload:         string(d.Payload),
				CreatedAtUnixMs: d.CreatedAt,
			}
		}),
		Total: total,
	}, nil
}

func (s *ChatService) WatchChanges(_ *mqchatv1.WatchChangesRequest, stream mqchatv1.ChatService_WatchChangesServer) error {
	if s.bus == nil {
		return grpcstatus.Error(codes.Unavailable, "event bus not configured")
	}
	merged := make(chan bus.Event, watchBuffer)
	for _, prefix := range watchPrefixes {
		ch, unsub := s.bus.Subscribe(prefix, watchBuffer)
		defer unsub()
		go forward(stream.Context(), ch, merged)
	}

	for {
		select {
		case evt := <-merged:
			if err := stream.Send(eventToWire(evt)); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func forward(ctx context.Context, in <-chan bus.Event, out chan<- bus.Event) {
	for {
		select {
		case evt := <-in:
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func eventToWire(evt bus.Event) *mqchatv1.ChangeEvent {
	out := &mqchatv1.ChangeEvent{
		EventID:          uuid.NewString(),
		Kind:             evt.Kind,
		OccurredAtUnixMs: evt.Timestamp.UnixMilli(),
	}
	switch p := evt.Payload.(type) {
	case intsync.Change:
		out.Contact = p.Contact
		out.MsgID = p.MsgID
	case status.StatusChange:
		out.From = string(p.From)
		out.To = string(p.To)
	case string:
		out.Detail = p
	}
	return out
}

func messageToWire(m chat.Message) mqchatv1.Message {
	return mqchatv1.Message{
		ID:          m.ID,
		Sender:      m.Sender,
		Receiver:    m.Receiver,
		Body:        m.Body,
		Outgoing:    m.Outgoing(),
		Status:      m.Status.String(),
		ReadLocally: m.ReadLocally,
		Rendered:    m.String(),
	}
}

// toStatus maps engine errors to gRPC codes.
func toStatus(err error) error {
	if errors.Is(err, chat.ErrUnknownContact) {
		return grpcstatus.Error(codes.NotFound, err.Error())
	}
	return grpcstatus.Error(codes.Internal, err.Error())
}
