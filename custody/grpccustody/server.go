package grpccustody

import (
	"context"
	"encoding/base64"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"landlock.dev/landlock/custody"
)

// Server exposes a custody.Custody over the Custody gRPC service.
type Server struct {
	UnimplementedCustodyServer
	Custody custody.Custody
}

func (s *Server) ready() error {
	if s == nil || s.Custody == nil {
		return status.Error(codes.FailedPrecondition, "missing custody backend")
	}
	return nil
}

func (s *Server) Challenge(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := fieldAddress(in, "subject")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	ch, err := s.Custody.Challenge(ctx, subject)
	if err != nil {
		return nil, mapErr(err)
	}
	return encodeChallenge(ch), nil
}

func (s *Server) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	pointer, err := fieldString(in, "pointer")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	owner, err := fieldAddress(in, "owner")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	key, err := fieldBytes(in, "keyMaterial")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	sig, err := fieldSignature(in, "signature")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.Custody.Register(ctx, pointer, owner, key, sig); err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{"registered": true}), nil
}

func (s *Server) Release(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	pointer, err := fieldString(in, "pointer")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	holder, err := fieldAddress(in, "holder")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	sig, err := fieldSignature(in, "signature")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	key, err := s.Custody.Release(ctx, pointer, holder, sig)
	if err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{
		"keyMaterial": base64.StdEncoding.EncodeToString(key),
	}), nil
}

func (s *Server) Transfer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	pointer, err := fieldString(in, "pointer")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	from, err := fieldAddress(in, "from")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	to, err := fieldAddress(in, "to")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	sig, err := fieldSignature(in, "signature")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	attested, err := fieldBool(in, "attestConfirmed")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.Custody.Transfer(ctx, from, pointer, to, sig, attested); err != nil {
		return nil, mapErr(err)
	}
	return mustStruct(map[string]interface{}{"transferred": true}), nil
}
