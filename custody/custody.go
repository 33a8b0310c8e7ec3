// Package custody defines the client contract toward the key custody
// service: the holder of decryption key material for encrypted title
// metadata.
//
// The custody service is the off-ledger half of the transfer protocol. It
// releases key material only to the address it currently records as the
// authorized holder of a content pointer, and it can re-associate a
// pointer's key material to a new holder. It does NOT verify that the
// ledger agrees with a re-association; callers assert that via the
// attestConfirmed flag, and the transfer coordinator is responsible for
// only making that assertion after observing ledger confirmation.
package custody

import (
	"context"
	"errors"

	"landlock.dev/landlock/model"
)

var (
	// ErrChallengeUnavailable reports that no auth challenge could be
	// issued (service unreachable or refusing).
	ErrChallengeUnavailable = errors.New("custody: auth challenge unavailable")
	// ErrKeyNotFound reports that the content pointer is unknown.
	ErrKeyNotFound = errors.New("custody: key not found")
	// ErrNotAuthorizedHolder reports that the signing address is not the
	// recorded holder for the pointer.
	ErrNotAuthorizedHolder = errors.New("custody: not the authorized holder")
	// ErrAccessDenied reports that the presented signature did not prove
	// control of the claimed address (bad, expired, or replayed challenge).
	ErrAccessDenied = errors.New("custody: access denied")
	// ErrTransferRejected reports that the service refused a key
	// re-association. On ANY transfer error the key must be treated as
	// not yet transferred.
	ErrTransferRejected = errors.New("custody: transfer rejected")
	// ErrAlreadyBound reports a Register for a pointer that already has
	// key material (first writer wins).
	ErrAlreadyBound = errors.New("custody: pointer already bound")
)

// Custody is the consumed surface of the key custody service.
type Custody interface {
	// Challenge issues a fresh, single-use, time-bound auth challenge for
	// subject. Every privileged call needs its own challenge; signatures
	// are never reused.
	Challenge(ctx context.Context, subject model.Address) (model.AuthChallenge, error)

	// Register binds fresh key material to a content pointer with owner as
	// the initial authorized holder. sig must prove control of owner.
	Register(ctx context.Context, pointer string, owner model.Address, keyMaterial []byte, sig model.Signature) error

	// Release returns the key material for pointer if sig proves control
	// of holder and holder is the recorded authorized holder.
	Release(ctx context.Context, pointer string, holder model.Address, sig model.Signature) ([]byte, error)

	// Transfer re-associates pointer's key material from its current
	// holder to to. sig must prove control of from. attestConfirmed is the
	// caller's assertion that the ledger has already recorded the
	// corresponding ownership change; the service does not verify it.
	Transfer(ctx context.Context, from model.Address, pointer string, to model.Address, sig model.Signature, attestConfirmed bool) error
}
