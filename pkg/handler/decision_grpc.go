package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const decisionEvaluateFullMethod = "/" + NudgeDecisionServiceName + "/Evaluate"

// NudgeDecisionServiceServer answers dry-run eligibility questions.
type NudgeDecisionServiceServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedNudgeDecisionServiceServer can be embedded for forward compatibility.
type UnimplementedNudgeDecisionServiceServer struct{}

func (UnimplementedNudgeDecisionServiceServer) Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Evaluate not implemented")
}

// RegisterNudgeDecisionServiceServer registers srv on s.
func RegisterNudgeDecisionServiceServer(s grpc.ServiceRegistrar, srv NudgeDecisionServiceServer) {
	s.RegisterService(&NudgeDecisionService_ServiceDesc, srv)
}

func _NudgeDecisionService_Evaluate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NudgeDecisionServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: decisionEvaluateFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NudgeDecisionServiceServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// NudgeDecisionService_ServiceDesc is the grpc.ServiceDesc for NudgeDecisionService.
var NudgeDecisionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: NudgeDecisionServiceName,
	HandlerType: (*NudgeDecisionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler:    _NudgeDecisionService_Evaluate_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "creatornudge/decision/v1/decision.proto",
}

// NudgeDecisionServiceClient is the client API for NudgeDecisionService.
type NudgeDecisionServiceClient interface {
	Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type nudgeDecisionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewNudgeDecisionServiceClient(cc grpc.ClientConnInterface) NudgeDecisionServiceClient {
	return &nudgeDecisionServiceClient{cc}
}

func (c *nudgeDecisionServiceClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, decisionEvaluateFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
