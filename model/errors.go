package model

import "errors"

// Kind is a stable failure category for programmatic handling.
//
// Callers should branch on Kind (via IsKind or errors.As) rather than
// matching error strings; Error() strings are human-readable status text
// and may evolve.
type Kind string

const (
	// KindAuthentication: no challenge available, signature rejected, or
	// the signing capability itself is unavailable.
	KindAuthentication Kind = "Authentication"
	// KindLedger: ledger unreachable, transaction reverted, unknown title.
	KindLedger Kind = "Ledger"
	// KindCustody: key not found, transfer rejected, holder not authorized.
	KindCustody Kind = "Custody"
	// KindStorage: upload failed, blob missing, decryption or parse failed.
	KindStorage Kind = "Storage"
	// KindInconsistent: the ledger recorded a new owner but the key
	// re-association did not complete. Requires operator retry of the key
	// transfer alone; there is no rollback primitive for the ledger step.
	KindInconsistent Kind = "Inconsistent"
)

// Error is the protocol's structured error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError builds a structured error with no cause.
func NewError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError attaches a kind and status message to a collaborator failure.
func WrapError(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
