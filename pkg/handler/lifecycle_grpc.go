package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const lifecycleOnMessageFullMethod = "/" + LifecycleEventServiceName + "/OnMessage"

// LifecycleEventServiceServer receives creator lifecycle events as generic
// structs.
type LifecycleEventServiceServer interface {
	OnMessage(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// UnimplementedLifecycleEventServiceServer can be embedded for forward compatibility.
type UnimplementedLifecycleEventServiceServer struct{}

func (UnimplementedLifecycleEventServiceServer) OnMessage(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method OnMessage not implemented")
}

// RegisterLifecycleEventServiceServer registers srv on s.
func RegisterLifecycleEventServiceServer(s grpc.ServiceRegistrar, srv LifecycleEventServiceServer) {
	s.RegisterService(&LifecycleEventService_ServiceDesc, srv)
}

func _LifecycleEventService_OnMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LifecycleEventServiceServer).OnMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: lifecycleOnMessageFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LifecycleEventServiceServer).OnMessage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// LifecycleEventService_ServiceDesc is the grpc.ServiceDesc for LifecycleEventService.
var LifecycleEventService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: LifecycleEventServiceName,
	HandlerType: (*LifecycleEventServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "OnMessage",
			Handler:    _LifecycleEventService_OnMessage_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "creatornudge/lifecycle/v1/lifecycle.proto",
}

// LifecycleEventServiceClient is the client API for LifecycleEventService.
type LifecycleEventServiceClient interface {
	OnMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type lifecycleEventServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLifecycleEventServiceClient(cc grpc.ClientConnInterface) LifecycleEventServiceClient {
	return &lifecycleEventServiceClient{cc}
}

func (c *lifecycleEventServiceClient) OnMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, lifecycleOnMessageFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
