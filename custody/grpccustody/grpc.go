package grpccustody

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// CustodyServer is the server API for the Custody gRPC service.
//
// As with the ledger transport, messages are protobuf well-known types
// (structpb.Struct) so no protoc/codegen toolchain is needed. Signatures
// travel in their transport form, key material as base64.
//
// Proto definition: custody.proto.
type CustodyServer interface {
	Challenge(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Release(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedCustodyServer can be embedded to have forward compatible implementations.
type UnimplementedCustodyServer struct{}

func (UnimplementedCustodyServer) Challenge(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Challenge not implemented")
}
func (UnimplementedCustodyServer) Register(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedCustodyServer) Release(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Release not implemented")
}
func (UnimplementedCustodyServer) Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Transfer not implemented")
}

// RegisterCustodyServer registers the Custody service on a gRPC server.
func RegisterCustodyServer(s grpc.ServiceRegistrar, srv CustodyServer) {
	s.RegisterService(&Custody_ServiceDesc, srv)
}

// CustodyClient is the client API for the Custody gRPC service.
type CustodyClient interface {
	Challenge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Release(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Transfer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type custodyClient struct{ cc grpc.ClientConnInterface }

func NewCustodyClient(cc grpc.ClientConnInterface) CustodyClient { return &custodyClient{cc: cc} }

func (c *custodyClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *custodyClient) Challenge(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.custody.grpccustody.v1.Custody/Challenge", in, opts...)
}

func (c *custodyClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.custody.grpccustody.v1.Custody/Register", in, opts...)
}

func (c *custodyClient) Release(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.custody.grpccustody.v1.Custody/Release", in, opts...)
}

func (c *custodyClient) Transfer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.custody.grpccustody.v1.Custody/Transfer", in, opts...)
}

func unaryHandler(method string, call func(context.Context, *structpb.Struct) (*structpb.Struct, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _Custody_Challenge_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.custody.grpccustody.v1.Custody/Challenge", srv.(CustodyServer).Challenge)(srv, ctx, dec, interceptor)
}

func _Custody_Register_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.custody.grpccustody.v1.Custody/Register", srv.(CustodyServer).Register)(srv, ctx, dec, interceptor)
}

func _Custody_Release_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.custody.grpccustody.v1.Custody/Release", srv.(CustodyServer).Release)(srv, ctx, dec, interceptor)
}

func _Custody_Transfer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.custody.grpccustody.v1.Custody/Transfer", srv.(CustodyServer).Transfer)(srv, ctx, dec, interceptor)
}

// Custody_ServiceDesc is the grpc.ServiceDesc for the Custody service.
var Custody_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "landlock.custody.grpccustody.v1.Custody",
	HandlerType: (*CustodyServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Challenge", Handler: _Custody_Challenge_Handler},
		{MethodName: "Register", Handler: _Custody_Register_Handler},
		{MethodName: "Release", Handler: _Custody_Release_Handler},
		{MethodName: "Transfer", Handler: _Custody_Transfer_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "custody.proto",
}
