// Package coordinator drives the two-phase transfer protocol: the ledger
// ownership change first, the custody key re-association second, in that
// order and never the reverse.
//
// Phase order is enforced by construction. The only code path that calls
// the custody transfer holds a ledger Confirmation receipt, and receipts
// exist only for committed transactions. When the ledger commits but the
// key step fails, the transfer is inconsistent: the title has a new owner
// who cannot decrypt its metadata. There is no ledger rollback; the only
// remedy is retrying the key step, which RetryKeyTransfer does without
// ever touching the ledger again.
package coordinator

import (
	"context"
	"sync"

	"landlock.dev/landlock/auth"
	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/ledger"
	"landlock.dev/landlock/model"
	"landlock.dev/landlock/wallet"
)

// record is the session-local view of one in-flight transfer.
type record struct {
	req     model.PurchaseRequest
	state   model.TransferState
	failure string
}

// Options tunes a Coordinator.
type Options struct {
	// Auth is passed to every challenge handshake.
	Auth auth.Options
}

// Coordinator runs transfer steps on behalf of one wallet. A buyer
// session requests; a seller session approves and retries; both observe
// state. Records are session-local and die with the process; AdoptRequest
// rebuilds one from ledger state.
type Coordinator struct {
	ledger  ledger.Ledger
	custody custody.Custody
	signer  wallet.Signer
	opt     Options

	mu      sync.Mutex
	records map[model.TokenID]*record
}

// New constructs a Coordinator around one wallet.
func New(l ledger.Ledger, c custody.Custody, signer wallet.Signer, opt Options) *Coordinator {
	return &Coordinator{
		ledger:  l,
		custody: c,
		signer:  signer,
		opt:     opt,
		records: make(map[model.TokenID]*record),
	}
}

// RequestPurchase records the wallet's intent to buy a title. The owner
// snapshot taken here is advisory; the ledger re-checks everything at
// approval time.
//
// A rejected request (own title, duplicate, unknown title) leaves no
// local record.
func (c *Coordinator) RequestPurchase(ctx context.Context, token model.TokenID) (model.PurchaseRequest, error) {
	buyer, err := c.signer.Address()
	if err != nil {
		return model.PurchaseRequest{}, model.WrapError(model.KindAuthentication, "purchase request failed: no signing address", err)
	}

	owner, err := c.ledger.CurrentOwner(ctx, token)
	if err != nil {
		return model.PurchaseRequest{}, model.WrapError(model.KindLedger, "purchase request failed", err)
	}

	if _, err := c.ledger.RequestPurchase(ctx, buyer, token); err != nil {
		return model.PurchaseRequest{}, model.WrapError(model.KindLedger, "purchase request rejected", err)
	}

	req := model.PurchaseRequest{Token: token, Buyer: buyer, PreviousOwner: owner}
	c.mu.Lock()
	c.records[token] = &record{req: req, state: model.StateRequested}
	c.mu.Unlock()
	return req, nil
}

// AdoptRequest rebuilds a session record for a pending purchase from
// ledger state, for operators resuming a transfer started elsewhere.
func (c *Coordinator) AdoptRequest(ctx context.Context, token model.TokenID) (model.PurchaseRequest, error) {
	buyer, err := c.ledger.PendingBuyer(ctx, token)
	if err != nil {
		return model.PurchaseRequest{}, model.WrapError(model.KindLedger, "no pending request to adopt", err)
	}
	owner, err := c.ledger.CurrentOwner(ctx, token)
	if err != nil {
		return model.PurchaseRequest{}, model.WrapError(model.KindLedger, "no pending request to adopt", err)
	}

	req := model.PurchaseRequest{Token: token, Buyer: buyer, PreviousOwner: owner}
	c.mu.Lock()
	c.records[token] = &record{req: req, state: model.StateRequested}
	c.mu.Unlock()
	return req, nil
}

// AdoptConfirmed rebuilds a session record for a transfer whose ledger
// phase already committed, so RetryKeyTransfer can run in a fresh
// session. The wallet must be the previous owner; the ledger's current
// owner is taken as the buyer. The custody service still rejects the
// retry if this session was never the authorized holder.
func (c *Coordinator) AdoptConfirmed(ctx context.Context, token model.TokenID) (model.PurchaseRequest, error) {
	seller, err := c.signer.Address()
	if err != nil {
		return model.PurchaseRequest{}, model.WrapError(model.KindAuthentication, "no signing address", err)
	}
	owner, err := c.ledger.CurrentOwner(ctx, token)
	if err != nil {
		return model.PurchaseRequest{}, model.WrapError(model.KindLedger, "no confirmed transfer to adopt", err)
	}
	if owner == seller {
		return model.PurchaseRequest{}, model.NewError(model.KindLedger, "no confirmed transfer to adopt: wallet still owns this title")
	}

	req := model.PurchaseRequest{Token: token, Buyer: owner, PreviousOwner: seller}
	c.mu.Lock()
	c.records[token] = &record{req: req, state: model.StateOwnerConfirmed}
	c.mu.Unlock()
	return req, nil
}

// ApprovePurchase runs both phases: the authoritative ledger transfer to
// the pending buyer, then the custody key re-association.
//
// A ledger rejection aborts before anything changes hands. After the
// ledger commits, any failure (challenge, signing, custody) returns a
// KindInconsistent error and leaves the record in the owner-confirmed
// state for RetryKeyTransfer; the error never hides that ownership has
// already moved.
func (c *Coordinator) ApprovePurchase(ctx context.Context, token model.TokenID) (ledger.Confirmation, error) {
	seller, err := c.signer.Address()
	if err != nil {
		return ledger.Confirmation{}, model.WrapError(model.KindAuthentication, "approval failed: no signing address", err)
	}

	conf, err := c.ledger.ApprovePurchase(ctx, seller, token)
	if err != nil {
		return ledger.Confirmation{}, model.WrapError(model.KindLedger, "approval rejected", err)
	}

	// Ownership has moved. From here on every failure is an
	// inconsistency, not a clean abort.
	c.mu.Lock()
	rec, ok := c.records[token]
	if !ok {
		rec = &record{req: model.PurchaseRequest{Token: token, Buyer: conf.To, PreviousOwner: seller}}
		c.records[token] = rec
	}
	rec.state = model.StateOwnerConfirmed
	rec.failure = ""
	c.mu.Unlock()

	if err := c.transferKeys(ctx, conf, seller, token); err != nil {
		return conf, err
	}
	return conf, nil
}

// RetryKeyTransfer re-runs the key re-association for a transfer whose
// ledger phase already committed. The ledger is consulted read-only, to
// check the recorded buyer is still the owner; it is never mutated.
func (c *Coordinator) RetryKeyTransfer(ctx context.Context, token model.TokenID) error {
	c.mu.Lock()
	rec, ok := c.records[token]
	if !ok || rec.state != model.StateOwnerConfirmed {
		c.mu.Unlock()
		return model.NewError(model.KindInconsistent, "nothing to retry: no owner-confirmed transfer for this title")
	}
	req := rec.req
	c.mu.Unlock()

	seller, err := c.signer.Address()
	if err != nil {
		return model.WrapError(model.KindAuthentication, "retry failed: no signing address", err)
	}
	if seller != req.PreviousOwner {
		return model.NewError(model.KindAuthentication, "retry failed: wallet is not the previous owner")
	}

	owner, err := c.ledger.CurrentOwner(ctx, token)
	if err != nil {
		return model.WrapError(model.KindLedger, "retry failed", err)
	}
	if owner != req.Buyer {
		return model.NewError(model.KindLedger, "retry failed: ledger owner no longer matches recorded buyer")
	}

	conf := ledger.Confirmation{Token: token, From: req.PreviousOwner, To: req.Buyer}
	return c.transferKeys(ctx, conf, seller, token)
}

// transferKeys runs the custody phase against a confirmation receipt.
// Callers only reach here with a receipt for a committed ledger
// transaction, which is what justifies attesting confirmation to the
// custody service.
func (c *Coordinator) transferKeys(ctx context.Context, conf ledger.Confirmation, seller model.Address, token model.TokenID) error {
	fail := func(msg string, cause error) error {
		c.mu.Lock()
		if rec, ok := c.records[token]; ok {
			rec.state = model.StateOwnerConfirmed
			rec.failure = msg
		}
		c.mu.Unlock()
		return model.WrapError(model.KindInconsistent, "ledger transfer committed but "+msg, cause)
	}

	pointer, err := c.ledger.TokenURI(ctx, token)
	if err != nil {
		return fail("content pointer lookup failed", err)
	}
	sig, err := auth.Authenticate(ctx, c.custody, c.signer, seller, c.opt.Auth)
	if err != nil {
		return fail("custody authentication failed", err)
	}
	if err := c.custody.Transfer(ctx, seller, pointer, conf.To, sig, true); err != nil {
		return fail("key re-association failed", err)
	}

	c.mu.Lock()
	if rec, ok := c.records[token]; ok {
		rec.state = model.StateKeysTransferred
		rec.failure = ""
	}
	c.mu.Unlock()
	return nil
}

// StateOf reports the session-local phase of a title's transfer and, for
// an owner-confirmed transfer whose key step failed, the failure reason.
// Titles with no session record are available.
func (c *Coordinator) StateOf(token model.TokenID) (model.TransferState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[token]
	if !ok {
		return model.StateAvailable, ""
	}
	return rec.state, rec.failure
}

// Requests lists the session's purchase records in no particular order.
func (c *Coordinator) Requests() []model.PurchaseRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PurchaseRequest, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec.req)
	}
	return out
}

// WatchTransfers subscribes to ledger transfer events touching the wallet
// and invokes onEvent for each until ctx is done. Buyer sessions use this
// to observe the seller's approval; the callback typically re-enumerates
// holdings.
func (c *Coordinator) WatchTransfers(ctx context.Context, onEvent func(ledger.TransferEvent)) error {
	addr, err := c.signer.Address()
	if err != nil {
		return model.WrapError(model.KindAuthentication, "watch failed: no signing address", err)
	}
	events, err := c.ledger.Watch(ctx, addr)
	if err != nil {
		return model.WrapError(model.KindLedger, "watch failed", err)
	}

	go func() {
		for ev := range events {
			c.mu.Lock()
			if rec, ok := c.records[ev.Token]; ok &&
				rec.state == model.StateRequested &&
				ev.To == rec.req.Buyer {
				// The ledger phase is visible from here; whether the
				// seller's key step succeeded is not. A failed decrypt
				// later is the buyer's signal to ask for a retry.
				rec.state = model.StateOwnerConfirmed
			}
			c.mu.Unlock()
			if onEvent != nil {
				onEvent(ev)
			}
		}
	}()
	return nil
}
