package grpcledger

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"landlock.dev/landlock/ledger"
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ledger.ErrUnknownTitle):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ledger.ErrNoPendingRequest):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ledger.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ledger.ErrNotIssuer), errors.Is(err, ledger.ErrNotOwner), errors.Is(err, ledger.ErrOwnTitle):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return errors.Join(ledger.ErrUnreachable, err)
	}

	switch st.Code() {
	case codes.NotFound:
		return ledger.ErrUnknownTitle
	case codes.FailedPrecondition:
		return ledger.ErrNoPendingRequest
	case codes.AlreadyExists:
		return ledger.ErrDuplicateRequest
	case codes.Unavailable, codes.DeadlineExceeded:
		return errors.Join(ledger.ErrUnreachable, err)
	case codes.PermissionDenied:
		// Preserve the server's sentinel message so callers can still
		// distinguish the three authorization failures.
		switch st.Message() {
		case ledger.ErrNotIssuer.Error():
			return ledger.ErrNotIssuer
		case ledger.ErrOwnTitle.Error():
			return ledger.ErrOwnTitle
		default:
			return ledger.ErrNotOwner
		}
	default:
		return err
	}
}
