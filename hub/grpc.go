package hub

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/fchub/message"
)

// HubServiceServer is the subset of the Farcaster HubService consumed here.
//
// Types are encoded by hand (see binaryCodec) so this package does not require
// a protoc/codegen toolchain. The hub schema declares no proto package, hence
// the bare "/HubService/..." method names.
type HubServiceServer interface {
	SubmitMessage(context.Context, *message.Message) (*message.Message, error)
	GetUserData(context.Context, *UserDataRequest) (*message.Message, error)
	GetVerificationsByFid(context.Context, *FidRequest) (*MessagesResponse, error)
	GetCast(context.Context, *message.CastID) (*message.Message, error)
	GetReactionsByCast(context.Context, *ReactionsByTargetRequest) (*MessagesResponse, error)
}

// UnimplementedHubServiceServer can be embedded to have forward compatible implementations.
type UnimplementedHubServiceServer struct{}

func (UnimplementedHubServiceServer) SubmitMessage(context.Context, *message.Message) (*message.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitMessage not implemented")
}
func (UnimplementedHubServiceServer) GetUserData(context.Context, *UserDataRequest) (*message.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method GetUserData not implemented")
}
func (UnimplementedHubServiceServer) GetVerificationsByFid(context.Context, *FidRequest) (*MessagesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetVerificationsByFid not implemented")
}
func (UnimplementedHubServiceServer) GetCast(context.Context, *message.CastID) (*message.Message, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCast not implemented")
}
func (UnimplementedHubServiceServer) GetReactionsByCast(context.Context, *ReactionsByTargetRequest) (*MessagesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReactionsByCast not implemented")
}

// RegisterHubServiceServer registers the hub service on a gRPC server. The
// server must be built with NewServer (or grpc.ForceServerCodec(binaryCodec)).
func RegisterHubServiceServer(s grpc.ServiceRegistrar, srv HubServiceServer) {
	s.RegisterService(&HubService_ServiceDesc, srv)
}

// NewServer returns a gRPC server able to decode hub messages.
func NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(binaryCodec{})}, opts...)
	return grpc.NewServer(opts...)
}

// HubServiceClient is the client API for the hub service.
type HubServiceClient interface {
	SubmitMessage(ctx context.Context, in *message.Message, opts ...grpc.CallOption) (*message.Message, error)
	GetUserData(ctx context.Context, in *UserDataRequest, opts ...grpc.CallOption) (*message.Message, error)
	GetVerificationsByFid(ctx context.Context, in *FidRequest, opts ...grpc.CallOption) (*MessagesResponse, error)
	GetCast(ctx context.Context, in *message.CastID, opts ...grpc.CallOption) (*message.Message, error)
	GetReactionsByCast(ctx context.Context, in *ReactionsByTargetRequest, opts ...grpc.CallOption) (*MessagesResponse, error)
}

const (
	methodSubmitMessage         = "/HubService/SubmitMessage"
	methodGetUserData           = "/HubService/GetUserData"
	methodGetVerificationsByFid = "/HubService/GetVerificationsByFid"
	methodGetCast               = "/HubService/GetCast"
	methodGetReactionsByCast    = "/HubService/GetReactionsByCast"
)

type hubServiceClient struct{ cc grpc.ClientConnInterface }

func NewHubServiceClient(cc grpc.ClientConnInterface) HubServiceClient {
	return &hubServiceClient{cc: cc}
}

func (c *hubServiceClient) SubmitMessage(ctx context.Context, in *message.Message, opts ...grpc.CallOption) (*message.Message, error) {
	out := new(message.Message)
	if err := c.cc.Invoke(ctx, methodSubmitMessage, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hubServiceClient) GetUserData(ctx context.Context, in *UserDataRequest, opts ...grpc.CallOption) (*message.Message, error) {
	out := new(message.Message)
	if err := c.cc.Invoke(ctx, methodGetUserData, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hubServiceClient) GetVerificationsByFid(ctx context.Context, in *FidRequest, opts ...grpc.CallOption) (*MessagesResponse, error) {
	out := new(MessagesResponse)
	if err := c.cc.Invoke(ctx, methodGetVerificationsByFid, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hubServiceClient) GetCast(ctx context.Context, in *message.CastID, opts ...grpc.CallOption) (*message.Message, error) {
	out := new(message.Message)
	if err := c.cc.Invoke(ctx, methodGetCast, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hubServiceClient) GetReactionsByCast(ctx context.Context, in *ReactionsByTargetRequest, opts ...grpc.CallOption) (*MessagesResponse, error) {
	out := new(MessagesResponse)
	if err := c.cc.Invoke(ctx, methodGetReactionsByCast, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(binaryCodec{})}, opts...)
}

func _HubService_SubmitMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(message.Message)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HubServiceServer).SubmitMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSubmitMessage}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HubServiceServer).SubmitMessage(ctx, req.(*message.Message))
	}
	return interceptor(ctx, in, info, handler)
}

func _HubService_GetUserData_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UserDataRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HubServiceServer).GetUserData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetUserData}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HubServiceServer).GetUserData(ctx, req.(*UserDataRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _HubService_GetVerificationsByFid_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FidRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HubServiceServer).GetVerificationsByFid(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetVerificationsByFid}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HubServiceServer).GetVerificationsByFid(ctx, req.(*FidRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _HubService_GetCast_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(message.CastID)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HubServiceServer).GetCast(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetCast}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HubServiceServer).GetCast(ctx, req.(*message.CastID))
	}
	return interceptor(ctx, in, info, handler)
}

func _HubService_GetReactionsByCast_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReactionsByTargetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HubServiceServer).GetReactionsByCast(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetReactionsByCast}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HubServiceServer).GetReactionsByCast(ctx, req.(*ReactionsByTargetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// HubService_ServiceDesc is the grpc.ServiceDesc for the hub service.
var HubService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "HubService",
	HandlerType: (*HubServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitMessage", Handler: _HubService_SubmitMessage_Handler},
		{MethodName: "GetUserData", Handler: _HubService_GetUserData_Handler},
		{MethodName: "GetVerificationsByFid", Handler: _HubService_GetVerificationsByFid_Handler},
		{MethodName: "GetCast", Handler: _HubService_GetCast_Handler},
		{MethodName: "GetReactionsByCast", Handler: _HubService_GetReactionsByCast_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpc.proto",
}
