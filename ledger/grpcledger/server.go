package grpcledger

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"landlock.dev/landlock/ledger"
	"landlock.dev/landlock/model"
)

// Server exposes a ledger.Ledger over the Ledger gRPC service.
type Server struct {
	UnimplementedLedgerServer
	Ledger ledger.Ledger
}

func (s *Server) ready() error {
	if s == nil || s.Ledger == nil {
		return status.Error(codes.FailedPrecondition, "missing ledger")
	}
	return nil
}

func (s *Server) CurrentOwner(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	token, err := fieldToken(in, "token")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	owner, err := s.Ledger.CurrentOwner(ctx, token)
	if err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{"owner": string(owner)}), nil
}

func (s *Server) BalanceOf(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	owner, err := fieldAddress(in, "owner")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	n, err := s.Ledger.BalanceOf(ctx, owner)
	if err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{"balance": float64(n)}), nil
}

func (s *Server) TokenOfOwnerByIndex(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	owner, err := fieldAddress(in, "owner")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	idx, ok := in.GetFields()["index"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing field \"index\"")
	}
	token, err := s.Ledger.TokenOfOwnerByIndex(ctx, owner, int(idx.GetNumberValue()))
	if err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{"token": encodeToken(token)}), nil
}

func (s *Server) TokenURI(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	token, err := fieldToken(in, "token")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	pointer, err := s.Ledger.TokenURI(ctx, token)
	if err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{"pointer": pointer}), nil
}

func (s *Server) PendingBuyer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	token, err := fieldToken(in, "token")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	buyer, err := s.Ledger.PendingBuyer(ctx, token)
	if err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{"buyer": string(buyer)}), nil
}

func (s *Server) Mint(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, err := fieldAddress(in, "caller")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	pointer, err := fieldString(in, "pointer")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	token, conf, err := s.Ledger.Mint(ctx, caller, pointer)
	if err != nil {
		return nil, mapErr(err)
	}
	out := encodeConfirmation(conf)
	out.Fields["minted"] = structpb.NewStringValue(encodeToken(token))
	return out, nil
}

func (s *Server) RequestPurchase(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, token, err := callerAndToken(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	conf, err := s.Ledger.RequestPurchase(ctx, caller, token)
	if err != nil {
		return nil, mapErr(err)
	}
	return encodeConfirmation(conf), nil
}

func (s *Server) ApprovePurchase(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	caller, token, err := callerAndToken(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	conf, err := s.Ledger.ApprovePurchase(ctx, caller, token)
	if err != nil {
		return nil, mapErr(err)
	}
	return encodeConfirmation(conf), nil
}

func (s *Server) Watch(in *structpb.Struct, stream Ledger_WatchServer) error {
	if err := s.ready(); err != nil {
		return err
	}
	addr, err := fieldAddress(in, "address")
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	events, err := s.Ledger.Watch(stream.Context(), addr)
	if err != nil {
		return mapErr(err)
	}
	for ev := range events {
		if err := stream.Send(encodeEvent(ev)); err != nil {
			return err
		}
	}
	return nil
}

func callerAndToken(in *structpb.Struct) (model.Address, model.TokenID, error) {
	caller, err := fieldAddress(in, "caller")
	if err != nil {
		return "", 0, err
	}
	token, err := fieldToken(in, "token")
	if err != nil {
		return "", 0, err
	}
	return caller, token, nil
}
