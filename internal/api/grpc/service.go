package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "shifts.v1.ShiftService"

const (
	approveCoverMethod  = "/" + ServiceName + "/ApproveCoverRequest"
	denyCoverMethod     = "/" + ServiceName + "/DenyCoverRequest"
	updateTimeOffMethod = "/" + ServiceName + "/UpdateTimeOffRequest"
)

// ShiftServiceServer exposes the approval workflows over gRPC. Messages are
// protobuf well-known types, so no generated stubs are needed.
type ShiftServiceServer interface {
	ApproveCoverRequest(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	DenyCoverRequest(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	UpdateTimeOffRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ShiftServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShiftServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ApproveCoverRequest", Handler: approveCoverHandler},
		{MethodName: "DenyCoverRequest", Handler: denyCoverHandler},
		{MethodName: "UpdateTimeOffRequest", Handler: updateTimeOffHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shifts/v1/shift_service.proto",
}

func RegisterShiftServiceServer(s grpc.ServiceRegistrar, srv ShiftServiceServer) {
	s.RegisterService(&ShiftServiceDesc, srv)
}

func approveCoverHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShiftServiceServer).ApproveCoverRequest(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: approveCoverMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShiftServiceServer).ApproveCoverRequest(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func denyCoverHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShiftServiceServer).DenyCoverRequest(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: denyCoverMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShiftServiceServer).DenyCoverRequest(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func updateTimeOffHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShiftServiceServer).UpdateTimeOffRequest(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: updateTimeOffMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShiftServiceServer).UpdateTimeOffRequest(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ShiftServiceClient is the client side of ShiftServiceDesc.
type ShiftServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewShiftServiceClient(cc grpc.ClientConnInterface) *ShiftServiceClient {
	return &ShiftServiceClient{cc: cc}
}

func (c *ShiftServiceClient) ApproveCoverRequest(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, approveCoverMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShiftServiceClient) DenyCoverRequest(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, denyCoverMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ShiftServiceClient) UpdateTimeOffRequest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, updateTimeOffMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
