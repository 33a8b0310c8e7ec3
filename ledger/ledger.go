// Package ledger defines the consumed surface of the title ledger: the
// ownership oracle (view calls) and the transfer primitives
// (mint / requestPurchase / approvePurchase).
//
// The ledger is authoritative for ownership and for rejecting invalid
// transactions; nothing in this repository second-guesses it. Mutating
// calls return a Confirmation only after the ledger has committed the
// transaction, so "wait for confirmation" is a data dependency: code that
// needs step N+1 to follow step N's commit must consume step N's receipt.
package ledger

import (
	"context"
	"errors"
	"time"

	"landlock.dev/landlock/model"
)

var (
	// ErrUnreachable reports a network or RPC failure talking to the ledger.
	ErrUnreachable = errors.New("ledger: unreachable")
	// ErrUnknownTitle reports that the ledger has no record of the title.
	ErrUnknownTitle = errors.New("ledger: unknown title")
	// ErrNotIssuer rejects a mint from anyone but the issuing authority.
	ErrNotIssuer = errors.New("ledger: caller is not the issuing authority")
	// ErrNotOwner rejects an approval from anyone but the current owner.
	ErrNotOwner = errors.New("ledger: caller is not the current owner")
	// ErrOwnTitle rejects a purchase request for a title the caller owns.
	ErrOwnTitle = errors.New("ledger: caller already owns this title")
	// ErrDuplicateRequest rejects a second purchase request while one is
	// pending. The ledger enforces single-pending-request semantics;
	// clients do not arbitrate concurrent requests locally.
	ErrDuplicateRequest = errors.New("ledger: purchase already requested")
	// ErrNoPendingRequest rejects an approval with nothing to approve.
	ErrNoPendingRequest = errors.New("ledger: no pending purchase request")
)

// Confirmation is the receipt for a committed ledger transaction. Seq is
// the ledger's total order over committed transactions.
type Confirmation struct {
	Token model.TokenID
	From  model.Address
	To    model.Address
	Seq   uint64
	At    time.Time
}

// TransferEvent is an ownership-transfer notification. From is
// model.ZeroAddress for mints.
type TransferEvent struct {
	Token model.TokenID
	From  model.Address
	To    model.Address
	Seq   uint64
}

// Ledger is the client contract toward the title ledger.
type Ledger interface {
	// CurrentOwner reads the authoritative owner of a title.
	CurrentOwner(ctx context.Context, token model.TokenID) (model.Address, error)

	// BalanceOf reports how many titles an address owns.
	BalanceOf(ctx context.Context, owner model.Address) (int, error)

	// TokenOfOwnerByIndex resolves the i-th title of an owner, 0-based.
	TokenOfOwnerByIndex(ctx context.Context, owner model.Address, index int) (model.TokenID, error)

	// TokenURI returns the content pointer of a title's encrypted metadata.
	TokenURI(ctx context.Context, token model.TokenID) (string, error)

	// PendingBuyer reports the buyer of the title's pending purchase
	// request, or ErrNoPendingRequest.
	PendingBuyer(ctx context.Context, token model.TokenID) (model.Address, error)

	// Mint issues a new title owned by caller. Restricted to the issuing
	// authority.
	Mint(ctx context.Context, caller model.Address, pointer string) (model.TokenID, Confirmation, error)

	// RequestPurchase records caller's intent to buy the title.
	RequestPurchase(ctx context.Context, caller model.Address, token model.TokenID) (Confirmation, error)

	// ApprovePurchase performs the authoritative ownership change from
	// caller (the current owner) to the pending buyer.
	ApprovePurchase(ctx context.Context, caller model.Address, token model.TokenID) (Confirmation, error)

	// Watch delivers transfer events touching addr (as sender or
	// receiver) until ctx is done; the channel is closed on cancellation.
	// Delivery is best-effort: slow consumers may miss events and should
	// re-enumerate on the next one.
	Watch(ctx context.Context, addr model.Address) (<-chan TransferEvent, error)
}

// TitlesOwnedBy enumerates owner's titles by walking the ledger's
// per-owner index and resolving each entry to its content pointer.
//
// The sequence reflects ledger state at call time: repeated calls during
// concurrent transfers may return different results (no snapshot
// isolation). An owner with zero titles yields an empty slice, not an
// error.
func TitlesOwnedBy(ctx context.Context, l Ledger, owner model.Address) ([]model.Title, error) {
	n, err := l.BalanceOf(ctx, owner)
	if err != nil {
		return nil, err
	}
	titles := make([]model.Title, 0, n)
	for i := 0; i < n; i++ {
		token, err := l.TokenOfOwnerByIndex(ctx, owner, i)
		if err != nil {
			return nil, err
		}
		pointer, err := l.TokenURI(ctx, token)
		if err != nil {
			return nil, err
		}
		titles = append(titles, model.Title{ID: token, Pointer: pointer, Owner: owner})
	}
	return titles, nil
}
