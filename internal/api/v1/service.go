package mqchatv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "mqchat.v1.ChatService"

const (
	ChatService_GetStatus_FullMethodName       = "/mqchat.v1.ChatService/GetStatus"
	ChatService_ListContacts_FullMethodName    = "/mqchat.v1.ChatService/ListContacts"
	ChatService_GetConversation_FullMethodName = "/mqchat.v1.ChatService/GetConversation"
	ChatService_Send_FullMethodName            = "/mqchat.v1.ChatService/Send"
	ChatService_SendToAll_FullMethodName       = "/mqchat.v1.ChatService/SendToAll"
	ChatService_NotifyTyping_FullMethodName    = "/mqchat.v1.ChatService/NotifyTyping"
	ChatService_MarkRead_FullMethodName        = "/mqchat.v1.ChatService/MarkRead"
	ChatService_ListDrops_FullMethodName       = "/mqchat.v1.ChatService/ListDrops"
	ChatService_WatchChanges_FullMethodName    = "/mqchat.v1.ChatService/WatchChanges"
)

// ChatServiceClient is the client API for ChatService.
type ChatServiceClient interface {
	GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error)
	ListContacts(ctx context.Context, in *ListContactsRequest, opts ...grpc.CallOption) (*ListContactsResponse, error)
	GetConversation(ctx context.Context, in *GetConversationRequest, opts ...grpc.CallOption) (*GetConversationResponse, error)
	Send(ctx context.Context, in *SendRequest, opts ...grpc.CallOption) (*SendResponse, error)
	SendToAll(ctx context.Context, in *SendToAllRequest, opts ...grpc.CallOption) (*SendToAllResponse, error)
	NotifyTyping(ctx context.Context, in *NotifyTypingRequest, opts ...grpc.CallOption) (*NotifyTypingResponse, error)
	MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error)
	ListDrops(ctx context.Context, in *ListDropsRequest, opts ...grpc.CallOption) (*ListDropsResponse, error)
	WatchChanges(ctx context.Context, in *WatchChangesRequest, opts ...grpc.CallOption) (ChatService_WatchChangesClient, error)
}

type chatServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewChatServiceClient returns a client whose calls are encoded with the JSON codec.
func NewChatServiceClient(cc grpc.ClientConnInterface) ChatServiceClient {
	return &chatServiceClient{cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *chatServiceClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error) {
	out := new(GetStatusResponse)
	if err := c.cc.Invoke(ctx, ChatService_GetStatus_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) ListContacts(ctx context.Context, in *ListContactsRequest, opts ...grpc.CallOption) (*ListContactsResponse, error) {
	out := new(ListContactsResponse)
	if err := c.cc.Invoke(ctx, ChatService_ListContacts_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) GetConversation(ctx context.Context, in *GetConversationRequest, opts ...grpc.CallOption) (*GetConversationResponse, error) {
	out := new(GetConversationResponse)
	if err := c.cc.Invoke(ctx, ChatService_GetConversation_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) Send(ctx context.Context, in *SendRequest, opts ...grpc.CallOption) (*SendResponse, error) {
	out := new(SendResponse)
	if err := c.cc.Invoke(ctx, ChatService_Send_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) SendToAll(ctx context.Context, in *SendToAllRequest, opts ...grpc.CallOption) (*SendToAllResponse, error) {
	out := new(SendToAllResponse)
	if err := c.cc.Invoke(ctx, ChatService_SendToAll_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) NotifyTyping(ctx context.Context, in *NotifyTypingRequest, opts ...grpc.CallOption) (*NotifyTypingResponse, error) {
	out := new(NotifyTypingResponse)
	if err := c.cc.Invoke(ctx, ChatService_NotifyTyping_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) MarkRead(ctx context.Context, in *MarkReadRequest, opts ...grpc.CallOption) (*MarkReadResponse, error) {
	out := new(MarkReadResponse)
	if err := c.cc.Invoke(ctx, ChatService_MarkRead_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) ListDrops(ctx context.Context, in *ListDropsRequest, opts ...grpc.CallOption) (*ListDropsResponse, error) {
	out := new(ListDropsResponse)
	if err := c.cc.Invoke(ctx, ChatService_ListDrops_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *chatServiceClient) WatchChanges(ctx context.Context, in *WatchChangesRequest, opts ...grpc.CallOption) (ChatService_WatchChangesClient, error) {
	stream, err := c.cc.NewStream(ctx, &ChatService_ServiceDesc.Streams[0], ChatService_WatchChanges_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &chatServiceWatchChangesClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// ChatService_WatchChangesClient receives forwarded bus events.
type ChatService_WatchChangesClient interface {
	Recv() (*ChangeEvent, error)
	grpc.ClientStream
}

type chatServiceWatchChangesClient struct {
	grpc.ClientStream
}

func (x *chatServiceWatchChangesClient) Recv() (*ChangeEvent, error) {
	m := new(ChangeEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ChatServiceServer is the server API for ChatService.
type ChatServiceServer interface {
	GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error)
	ListContacts(context.Context, *ListContactsRequest) (*ListContactsResponse, error)
	GetConversation(context.Context, *GetConversationRequest) (*GetConversationResponse, error)
	Send(context.Context, *SendRequest) (*SendResponse, error)
	SendToAll(context.Context, *SendToAllRequest) (*SendToAllResponse, error)
	NotifyTyping(context.Context, *NotifyTypingRequest) (*NotifyTypingResponse, error)
	MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error)
	ListDrops(context.Context, *ListDropsRequest) (*ListDropsResponse, error)
	WatchChanges(*WatchChangesRequest, ChatService_WatchChangesServer) error
}

// UnimplementedChatServiceServer answers every call with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedChatServiceServer struct{}

func (UnimplementedChatServiceServer) GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}
func (UnimplementedChatServiceServer) ListContacts(context.Context, *ListContactsRequest) (*ListContactsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListContacts not implemented")
}
func (UnimplementedChatServiceServer) GetConversation(context.Context, *GetConversationRequest) (*GetConversationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetConversation not implemented")
}
func (UnimplementedChatServiceServer) Send(context.Context, *SendRequest) (*SendResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Send not implemented")
}
func (UnimplementedChatServiceServer) SendToAll(context.Context, *SendToAllRequest) (*SendToAllResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SendToAll not implemented")
}
func (UnimplementedChatServiceServer) NotifyTyping(context.Context, *NotifyTypingRequest) (*NotifyTypingResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method NotifyTyping not implemented")
}
func (UnimplementedChatServiceServer) MarkRead(context.Context, *MarkReadRequest) (*MarkReadResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method MarkRead not implemented")
}
func (UnimplementedChatServiceServer) ListDrops(context.Context, *ListDropsRequest) (*ListDropsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListDrops not implemented")
}
func (UnimplementedChatServiceServer) WatchChanges(*WatchChangesRequest, ChatService_WatchChangesServer) error {
	return status.Errorf(codes.Unimplemented, "method WatchChanges not implemented")
}

// RegisterChatServiceServer registers srv on s.
func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(ChatServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChatServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ChatServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _ChatService_WatchChanges_Handler(srv any, stream grpc.ServerStream) error {
	m := new(WatchChangesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ChatServiceServer).WatchChanges(m, &chatServiceWatchChangesServer{stream})
}

// ChatService_WatchChangesServer sends forwarded bus events.
type ChatService_WatchChangesServer interface {
	Send(*ChangeEvent) error
	grpc.ServerStream
}

type chatServiceWatchChangesServer struct {
	grpc.ServerStream
}

func (x *chatServiceWatchChangesServer) Send(m *ChangeEvent) error {
	return x.ServerStream.SendMsg(m)
}

// ChatService_ServiceDesc is the grpc.ServiceDesc for ChatService.
var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    unaryHandler(ChatService_GetStatus_FullMethodName, ChatServiceServer.GetStatus),
		},
		{
			MethodName: "ListContacts",
			Handler:    unaryHandler(ChatService_ListContacts_FullMethodName, ChatServiceServer.ListContacts),
		},
		{
			MethodName: "GetConversation",
			Handler:    unaryHandler(ChatService_GetConversation_FullMethodName, ChatServiceServer.GetConversation),
		},
		{
			MethodName: "Send",
			Handler:    unaryHandler(ChatService_Send_FullMethodName, ChatServiceServer.Send),
		},
		{
			MethodName: "SendToAll",
			Handler:    unaryHandler(ChatService_SendToAll_FullMethodName, ChatServiceServer.SendToAll),
		},
		{
			MethodName: "NotifyTyping",
			Handler:    unaryHandler(ChatService_NotifyTyping_FullMethodName, ChatServiceServer.NotifyTyping),
		},
		{
			MethodName: "MarkRead",
			Handler:    unaryHandler(ChatService_MarkRead_FullMethodName, ChatServiceServer.MarkRead),
		},
		{
			MethodName: "ListDrops",
			Handler:    unaryHandler(ChatService_ListDrops_FullMethodName, ChatServiceServer.ListDrops),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchChanges",
			Handler:       _ChatService_WatchChanges_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "mqchat/v1/chat.json",
}
