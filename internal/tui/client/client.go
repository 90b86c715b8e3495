package client

import (
	"context"
	"fmt"

	mqchatv1 "github.com/matheus3301/mqchat/internal/api/v1"
	"github.com/matheus3301/mqchat/internal/tui/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn   *grpc.ClientConn
	Chat   mqchatv1.ChatServiceClient
	health healthpb.HealthClient
}

// New dials the daemon's Unix domain socket and returns typed service clients.
// Dialing is lazy: a missing daemon surfaces on the first call.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}

	return &Client{
		conn:   conn,
		Chat:   mqchatv1.NewChatServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// Healthy reports whether the daemon answers the standard health check
// with SERVING for the chat service.
func (c *Client) Healthy(ctx context.Context) bool {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: mqchatv1.ServiceName})
	return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// The methods below expose ChatService without call options so the client
// satisfies the TUI view model's port.

func (c *Client) GetStatus(ctx context.Context, in *mqchatv1.GetStatusRequest) (*mqchatv1.GetStatusResponse, error) {
	return c.Chat.GetStatus(ctx, in)
}

func (c *Client) ListContacts(ctx context.Context, in *mqchatv1.ListContactsRequest) (*mqchatv1.ListContactsResponse, error) {
	return c.Chat.ListContacts(ctx, in)
}

func (c *Client) GetConversation(ctx context.Context, in *mqchatv1.GetConversationRequest) (*mqchatv1.GetConversationResponse, error) {
	return c.Chat.GetConversation(ctx, in)
}

func (c *Client) Send(ctx context.Context, in *mqchatv1.SendRequest) (*mqchatv1.SendResponse, error) {
	return c.Chat.Send(ctx, in)
}

func (c *Client) SendToAll(ctx context.Context, in *mqchatv1.SendToAllRequest) (*mqchatv1.SendToAllResponse, error) {
	return c.Chat.SendToAll(ctx, in)
}

func (c *Client) NotifyTyping(ctx context.Context, in *mqchatv1.NotifyTypingRequest) (*mqchatv1.NotifyTypingResponse, error) {
	return c.Chat.NotifyTyping(ctx, in)
}

func (c *Client) MarkRead(ctx context.Context, in *mqchatv1.MarkReadRequest) (*mqchatv1.MarkReadResponse, error) {
	return c.Chat.MarkRead(ctx, in)
}

func (c *Client) WatchChanges(ctx context.Context, in *mqchatv1.WatchChangesRequest) (model.EventStream, error) {
	return c.Chat.WatchChanges(ctx, in)
}
