package grpcledger

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// LedgerServer is the server API for the Ledger gRPC service.
//
// We intentionally use protobuf well-known types (structpb.Struct) so this
// package does not require a protoc/codegen toolchain. Token ids and
// sequence numbers travel as decimal strings inside Structs; structpb
// numbers are float64 and would truncate uint64 values.
//
// Proto definition: ledger.proto.
type LedgerServer interface {
	CurrentOwner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BalanceOf(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TokenOfOwnerByIndex(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TokenURI(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PendingBuyer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Mint(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestPurchase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApprovePurchase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Watch(*structpb.Struct, Ledger_WatchServer) error
}

// UnimplementedLedgerServer can be embedded to have forward compatible implementations.
type UnimplementedLedgerServer struct{}

func (UnimplementedLedgerServer) CurrentOwner(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CurrentOwner not implemented")
}
func (UnimplementedLedgerServer) BalanceOf(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method BalanceOf not implemented")
}
func (UnimplementedLedgerServer) TokenOfOwnerByIndex(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method TokenOfOwnerByIndex not implemented")
}
func (UnimplementedLedgerServer) TokenURI(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method TokenURI not implemented")
}
func (UnimplementedLedgerServer) PendingBuyer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method PendingBuyer not implemented")
}
func (UnimplementedLedgerServer) Mint(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Mint not implemented")
}
func (UnimplementedLedgerServer) RequestPurchase(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestPurchase not implemented")
}
func (UnimplementedLedgerServer) ApprovePurchase(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ApprovePurchase not implemented")
}
func (UnimplementedLedgerServer) Watch(*structpb.Struct, Ledger_WatchServer) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

// RegisterLedgerServer registers the Ledger service on a gRPC server.
func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&Ledger_ServiceDesc, srv)
}

// LedgerClient is the client API for the Ledger gRPC service.
type LedgerClient interface {
	CurrentOwner(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	BalanceOf(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	TokenOfOwnerByIndex(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	TokenURI(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PendingBuyer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Mint(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RequestPurchase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ApprovePurchase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Watch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (Ledger_WatchClient, error)
}

type ledgerClient struct{ cc grpc.ClientConnInterface }

func NewLedgerClient(cc grpc.ClientConnInterface) LedgerClient { return &ledgerClient{cc: cc} }

func (c *ledgerClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) CurrentOwner(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/CurrentOwner", in, opts...)
}

func (c *ledgerClient) BalanceOf(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/BalanceOf", in, opts...)
}

func (c *ledgerClient) TokenOfOwnerByIndex(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/TokenOfOwnerByIndex", in, opts...)
}

func (c *ledgerClient) TokenURI(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/TokenURI", in, opts...)
}

func (c *ledgerClient) PendingBuyer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/PendingBuyer", in, opts...)
}

func (c *ledgerClient) Mint(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/Mint", in, opts...)
}

func (c *ledgerClient) RequestPurchase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/RequestPurchase", in, opts...)
}

func (c *ledgerClient) ApprovePurchase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "/landlock.ledger.grpcledger.v1.Ledger/ApprovePurchase", in, opts...)
}

func (c *ledgerClient) Watch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (Ledger_WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &Ledger_ServiceDesc.Streams[0], "/landlock.ledger.grpcledger.v1.Ledger/Watch", opts...)
	if err != nil {
		return nil, err
	}
	x := &ledgerWatchClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// Ledger_WatchClient receives transfer events from a Watch stream.
type Ledger_WatchClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type ledgerWatchClient struct{ grpc.ClientStream }

func (x *ledgerWatchClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Ledger_WatchServer sends transfer events to a Watch stream.
type Ledger_WatchServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type ledgerWatchServer struct{ grpc.ServerStream }

func (x *ledgerWatchServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
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

func _Ledger_CurrentOwner_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/CurrentOwner", srv.(LedgerServer).CurrentOwner)(srv, ctx, dec, interceptor)
}

func _Ledger_BalanceOf_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/BalanceOf", srv.(LedgerServer).BalanceOf)(srv, ctx, dec, interceptor)
}

func _Ledger_TokenOfOwnerByIndex_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/TokenOfOwnerByIndex", srv.(LedgerServer).TokenOfOwnerByIndex)(srv, ctx, dec, interceptor)
}

func _Ledger_TokenURI_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/TokenURI", srv.(LedgerServer).TokenURI)(srv, ctx, dec, interceptor)
}

func _Ledger_PendingBuyer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/PendingBuyer", srv.(LedgerServer).PendingBuyer)(srv, ctx, dec, interceptor)
}

func _Ledger_Mint_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/Mint", srv.(LedgerServer).Mint)(srv, ctx, dec, interceptor)
}

func _Ledger_RequestPurchase_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/RequestPurchase", srv.(LedgerServer).RequestPurchase)(srv, ctx, dec, interceptor)
}

func _Ledger_ApprovePurchase_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return unaryHandler("/landlock.ledger.grpcledger.v1.Ledger/ApprovePurchase", srv.(LedgerServer).ApprovePurchase)(srv, ctx, dec, interceptor)
}

func _Ledger_Watch_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LedgerServer).Watch(m, &ledgerWatchServer{stream})
}

// Ledger_ServiceDesc is the grpc.ServiceDesc for the Ledger service.
var Ledger_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "landlock.ledger.grpcledger.v1.Ledger",
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CurrentOwner", Handler: _Ledger_CurrentOwner_Handler},
		{MethodName: "BalanceOf", Handler: _Ledger_BalanceOf_Handler},
		{MethodName: "TokenOfOwnerByIndex", Handler: _Ledger_TokenOfOwnerByIndex_Handler},
		{MethodName: "TokenURI", Handler: _Ledger_TokenURI_Handler},
		{MethodName: "PendingBuyer", Handler: _Ledger_PendingBuyer_Handler},
		{MethodName: "Mint", Handler: _Ledger_Mint_Handler},
		{MethodName: "RequestPurchase", Handler: _Ledger_RequestPurchase_Handler},
		{MethodName: "ApprovePurchase", Handler: _Ledger_ApprovePurchase_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: _Ledger_Watch_Handler, ServerStreams: true},
	},
	Metadata: "ledger.proto",
}
