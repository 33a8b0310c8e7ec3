package grpccustody

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"landlock.dev/landlock/custody"
)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, custody.ErrKeyNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, custody.ErrAlreadyBound):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, custody.ErrNotAuthorizedHolder):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, custody.ErrAccessDenied):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, custody.ErrTransferRejected):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, custody.ErrChallengeUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// mapRPC recovers the package sentinels from status codes so callers can
// use errors.Is against an in-process service and a remote one alike.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return custody.ErrKeyNotFound
	case codes.AlreadyExists:
		return custody.ErrAlreadyBound
	case codes.PermissionDenied:
		return custody.ErrNotAuthorizedHolder
	case codes.Unauthenticated:
		return custody.ErrAccessDenied
	case codes.FailedPrecondition:
		return custody.ErrTransferRejected
	case codes.Unavailable:
		return custody.ErrChallengeUnavailable
	default:
		return err
	}
}
