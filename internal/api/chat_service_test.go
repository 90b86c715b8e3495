package api

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	mqchatv1 "github.com/matheus3301/mqchat/internal/api/v1"
	"github.com/matheus3301/mqchat/internal/bus"
	"github.com/matheus3301/mqchat/internal/chat"
	"github.com/matheus3301/mqchat/internal/status"
	"github.com/matheus3301/mqchat/internal/store"
	intsync "github.com/matheus3301/mqchat/internal/sync"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcstatus "google.golang.org/grpc/status"
)

type fixture struct {
	client  mqchatv1.ChatServiceClient
	engine  *intsync.Engine
	machine *status.Machine
	db      *store.DB
}

func setup(t *testing.T) *fixture {
	t.Helper()
	// Short path to stay under the Unix socket length limit.
	tmpDir, err := os.MkdirTemp("/tmp", "mqchat-api-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := store.Open(filepath.Join(tmpDir, "journal.db"), "team5b")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	roster, err := chat.NewRoster(chat.DefaultCandidates(), "team5b")
	if err != nil {
		t.Fatal(err)
	}
	b := bus.New()
	machine := status.NewMachine(b)
	engine := intsync.NewEngine(roster, nil, b, nil)
	svc := NewChatService(Info{Identity: "team5b", Namespace: "ttm4175", Broker: "tcp://localhost:1883"}, engine, machine, db, b, nil)

	srv := grpc.NewServer()
	mqchatv1.RegisterChatServiceServer(srv, svc)
	socketPath := filepath.Join(tmpDir, "d.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("unix://"+socketPath, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{
		client:  mqchatv1.NewChatServiceClient(conn),
		engine:  engine,
		machine: machine,
		db:      db,
	}
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestGetStatus(t *testing.T) {
	f := setup(t)

	resp, err := f.client.GetStatus(ctx(t), &mqchatv1.GetStatusRequest{})
	if err != nil {
		t.Fatalf("GetStatus error = %v", err)
	}
	if resp.Identity != "team5b" {
		t.Errorf("identity = %q, want team5b", resp.Identity)
	}
	if resp.Status != mqchatv1.StatusOffline {
		t.Errorf("status = %q, want OFFLINE", resp.Status)
	}
	if resp.Contacts != 29 {
		t.Errorf("contacts = %d, want 29", resp.Contacts)
	}

	if err := f.machine.Transition(status.Connecting); err != nil {
		t.Fatal(err)
	}
	f.engine.OnMessage("team3a", "hi", "m1")
	resp, err = f.client.GetStatus(ctx(t), &mqchatv1.GetStatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != mqchatv1.StatusConnecting {
		t.Errorf("status = %q, want CONNECTING", resp.Status)
	}
	if resp.Unread != 1 {
		t.Errorf("unread = %d, want 1", resp.Unread)
	}
}

func TestListContacts(t *testing.T) {
	f := setup(t)
	f.engine.OnMessage("team3a", "hi", "m1")
	f.engine.OnTyping("x1")

	resp, err := f.client.ListContacts(ctx(t), &mqchatv1.ListContactsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	byID := make(map[string]mqchatv1.Contact)
	for _, c := range resp.Contacts {
		byID[c.ID] = c
	}
	if _, ok := byID["team5b"]; ok {
		t.Error("self listed as contact")
	}
	if got := byID["team3a"].Label; got != "team3a(1)" {
		t.Errorf("label = %q, want team3a(1)", got)
	}
	if !byID["x1"].Typing {
		t.Error("x1 should be typing")
	}
}

func TestSendAndConversation(t *testing.T) {
	f := setup(t)

	sent, err := f.client.Send(ctx(t), &mqchatv1.SendRequest{Contact: "team3a", Body: "hello"})
	if err != nil {
		t.Fatalf("Send error = %v", err)
	}
	if len(sent.ID) != 32 {
		t.Errorf("id = %q, want 32 hex chars", sent.ID)
	}
	f.engine.OnDelivered("team3a", sent.ID)
	f.engine.OnTyping("team3a")

	conv, err := f.client.GetConversation(ctx(t), &mqchatv1.GetConversationRequest{Contact: "team3a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(conv.Messages))
	}
	m := conv.Messages[0]
	if !m.Outgoing || m.Status != "delivered" || m.Sender != "team5b" {
		t.Errorf("message = %+v", m)
	}
	if want := "team5b:\n  hello\n (delivered)"; m.Rendered != want {
		t.Errorf("rendered = %q, want %q", m.Rendered, want)
	}
	if !conv.Typing {
		t.Error("typing should be reported once")
	}

	conv, err = f.client.GetConversation(ctx(t), &mqchatv1.GetConversationRequest{Contact: "team3a"})
	if err != nil {
		t.Fatal(err)
	}
	if conv.Typing {
		t.Error("typing should be cleared after being reported")
	}
}

func TestMarkRead(t *testing.T) {
	f := setup(t)
	f.engine.OnMessage("team3a", "one", "m1")
	f.engine.OnMessage("team3a", "two", "m2")

	resp, err := f.client.MarkRead(ctx(t), &mqchatv1.MarkReadRequest{Contact: "team3a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.IDs) != 2 || resp.IDs[0] != "m1" || resp.IDs[1] != "m2" {
		t.Errorf("ids = %v, want [m1 m2]", resp.IDs)
	}

	resp, err = f.client.MarkRead(ctx(t), &mqchatv1.MarkReadRequest{Contact: "team3a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.IDs) != 0 {
		t.Errorf("second MarkRead ids = %v, want none", resp.IDs)
	}
}

func TestSendToAllAndTyping(t *testing.T) {
	f := setup(t)

	all, err := f.client.SendToAll(ctx(t), &mqchatv1.SendToAllRequest{Body: "hi all"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all.IDs) != 29 {
		t.Errorf("sent %d, want 29", len(all.IDs))
	}

	first, err := f.client.NotifyTyping(ctx(t), &mqchatv1.NotifyTypingRequest{Contact: "x2"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.client.NotifyTyping(ctx(t), &mqchatv1.NotifyTypingRequest{Contact: "x2"})
	if err != nil {
		t.Fatal(err)
	}
	if !first.Sent || second.Sent {
		t.Errorf("typing sent = %v, %v; want true, false", first.Sent, second.Sent)
	}
}

func TestErrorCodes(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"unknown contact", func() error {
			_, err := f.client.GetConversation(ctx(t), &mqchatv1.GetConversationRequest{Contact: "nobody"})
			return err
		}, codes.NotFound},
		{"send to self", func() error {
			_, err := f.client.Send(ctx(t), &mqchatv1.SendRequest{Contact: "team5b", Body: "me"})
			return err
		}, codes.NotFound},
		{"missing contact", func() error {
			_, err := f.client.MarkRead(ctx(t), &mqchatv1.MarkReadRequest{})
			return err
		}, codes.InvalidArgument},
		{"typing unknown", func() error {
			_, err := f.client.NotifyTyping(ctx(t), &mqchatv1.NotifyTypingRequest{Contact: "nobody"})
			return err
		}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if got := grpcstatus.Code(err); got != tt.want {
				t.Errorf("code = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestListDrops(t *testing.T) {
	f := setup(t)
	if err := f.db.RecordDrop("ttm4175/chat/team5b/message", "malformed: unexpected EOF", []byte("{")); err != nil {
		t.Fatal(err)
	}

	resp, err := f.client.ListDrops(ctx(t), &mqchatv1.ListDropsRequest{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Drops) != 1 {
		t.Fatalf("drops = %+v", resp)
	}
	if resp.Drops[0].Payload != "{" {
		t.Errorf("payload = %q, want {", resp.Drops[0].Payload)
	}
}

func TestWatchChanges(t *testing.T) {
	f := setup(t)

	wctx, cancel := context.WithCancel(ctx(t))
	defer cancel()
	stream, err := f.client.WatchChanges(wctx, &mqchatv1.WatchChangesRequest{})
	if err != nil {
		t.Fatal(err)
	}

	// The subscription is registered asynchronously on the server.
	got := make(chan *mqchatv1.ChangeEvent, 16)
	go func() {
		for {
			evt, err := stream.Recv()
			if err != nil {
				close(got)
				return
			}
			got <- evt
		}
	}()

	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			f.engine.OnMessage("team3a", "ping", "m1")
		case evt, ok := <-got:
			if !ok {
				t.Fatal("stream closed")
			}
			if evt.Kind != intsync.KindMessageReceived {
				continue
			}
			if evt.Contact != "team3a" || evt.MsgID != "m1" {
				t.Errorf("event = %+v", evt)
			}
			if evt.EventID == "" {
				t.Error("missing event id")
			}
			return
		case <-deadline:
			t.Fatal("timeout waiting for chat.message_received")
		}
	}
}

func TestWatchChangesStatus(t *testing.T) {
	f := setup(t)

	wctx, cancel := context.WithCancel(ctx(t))
	defer cancel()
	stream, err := f.client.WatchChanges(wctx, &mqchatv1.WatchChangesRequest{})
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan *mqchatv1.ChangeEvent, 16)
	go func() {
		for {
			evt, err := stream.Recv()
			if err != nil {
				close(got)
				return
			}
			got <- evt
		}
	}()

	states := []status.State{status.Connecting, status.Online, status.Reconnecting}
	next := 0
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			// Cycle until the watcher is subscribed and sees a transition.
			_ = f.machine.Transition(states[next%len(states)])
			next++
			if next%len(states) == 0 {
				_ = f.machine.Transition(status.Offline)
			}
		case evt, ok := <-got:
			if !ok {
				t.Fatal("stream closed")
			}
			if evt.Kind != status.KindStatusChanged {
				continue
			}
			if evt.To == "" || evt.From == "" {
				t.Errorf("event = %+v", evt)
			}
			return
		case <-deadline:
			t.Fatal("timeout waiting for transport.status_changed")
		}
	}
}
