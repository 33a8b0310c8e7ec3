// Package memledger is the reference in-process ledger. It honors the
// single-owner, single-pending-request semantics the protocol relies on
// and is what landlock-ledgerd serves over gRPC.
package memledger

import (
	"context"
	"sync"
	"time"

	"landlock.dev/landlock/cidutil"
	"landlock.dev/landlock/ledger"
	"landlock.dev/landlock/model"
)

const eventBuffer = 16

type title struct {
	pointer string
	owner   model.Address
}

type subscriber struct {
	addr model.Address
	ch   chan ledger.TransferEvent
}

// Ledger is an in-memory ledger.Ledger. The zero value is not usable;
// construct with New.
type Ledger struct {
	mu sync.Mutex

	issuer  model.Address // zero value disables the issuer check
	titles  map[model.TokenID]*title
	order   []model.TokenID // issuance order, drives per-owner indexing
	pending map[model.TokenID]model.Address
	seq     uint64

	subs map[int]*subscriber
	next int
}

// New constructs a ledger. If issuer is non-zero, only that address may
// mint.
func New(issuer model.Address) *Ledger {
	return &Ledger{
		issuer:  issuer,
		titles:  make(map[model.TokenID]*title),
		pending: make(map[model.TokenID]model.Address),
		subs:    make(map[int]*subscriber),
	}
}

func (l *Ledger) CurrentOwner(ctx context.Context, token model.TokenID) (model.Address, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.titles[token]
	if !ok {
		return "", ledger.ErrUnknownTitle
	}
	return t.owner, nil
}

func (l *Ledger) BalanceOf(ctx context.Context, owner model.Address) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, id := range l.order {
		if l.titles[id].owner == owner {
			n++
		}
	}
	return n, nil
}

func (l *Ledger) TokenOfOwnerByIndex(ctx context.Context, owner model.Address, index int) (model.TokenID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 {
		return 0, ledger.ErrUnknownTitle
	}
	i := 0
	for _, id := range l.order {
		if l.titles[id].owner != owner {
			continue
		}
		if i == index {
			return id, nil
		}
		i++
	}
	return 0, ledger.ErrUnknownTitle
}

func (l *Ledger) TokenURI(ctx context.Context, token model.TokenID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.titles[token]
	if !ok {
		return "", ledger.ErrUnknownTitle
	}
	return t.pointer, nil
}

func (l *Ledger) PendingBuyer(ctx context.Context, token model.TokenID) (model.Address, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.titles[token]; !ok {
		return "", ledger.ErrUnknownTitle
	}
	buyer, ok := l.pending[token]
	if !ok {
		return "", ledger.ErrNoPendingRequest
	}
	return buyer, nil
}

func (l *Ledger) Mint(ctx context.Context, caller model.Address, pointer string) (model.TokenID, ledger.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return 0, ledger.Confirmation{}, err
	}
	if err := cidutil.ValidatePointer(pointer); err != nil {
		return 0, ledger.Confirmation{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.issuer.IsZero() && caller != l.issuer {
		return 0, ledger.Confirmation{}, ledger.ErrNotIssuer
	}

	token := model.TokenID(len(l.order))
	l.titles[token] = &title{pointer: pointer, owner: caller}
	l.order = append(l.order, token)
	conf := l.commitLocked(token, model.ZeroAddress, caller)
	return token, conf, nil
}

func (l *Ledger) RequestPurchase(ctx context.Context, caller model.Address, token model.TokenID) (ledger.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Confirmation{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.titles[token]
	if !ok {
		return ledger.Confirmation{}, ledger.ErrUnknownTitle
	}
	if t.owner == caller {
		return ledger.Confirmation{}, ledger.ErrOwnTitle
	}
	if _, exists := l.pending[token]; exists {
		return ledger.Confirmation{}, ledger.ErrDuplicateRequest
	}

	l.pending[token] = caller
	l.seq++
	return ledger.Confirmation{Token: token, From: t.owner, To: caller, Seq: l.seq, At: time.Now().UTC()}, nil
}

func (l *Ledger) ApprovePurchase(ctx context.Context, caller model.Address, token model.TokenID) (ledger.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Confirmation{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.titles[token]
	if !ok {
		return ledger.Confirmation{}, ledger.ErrUnknownTitle
	}
	if t.owner != caller {
		return ledger.Confirmation{}, ledger.ErrNotOwner
	}
	buyer, ok := l.pending[token]
	if !ok {
		return ledger.Confirmation{}, ledger.ErrNoPendingRequest
	}

	delete(l.pending, token)
	from := t.owner
	t.owner = buyer
	return l.commitLocked(token, from, buyer), nil
}

func (l *Ledger) Watch(ctx context.Context, addr model.Address) (<-chan ledger.TransferEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	sub := &subscriber{addr: addr, ch: make(chan ledger.TransferEvent, eventBuffer)}
	id := l.next
	l.next++
	l.subs[id] = sub
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
		close(sub.ch)
	}()
	return sub.ch, nil
}

// Subscribers reports the number of live Watch subscriptions. Intended for
// tests that need to know a subscription is registered before mutating.
func (l *Ledger) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// commitLocked assigns the next sequence number and fans the transfer
// event out to matching subscribers. Events are dropped for subscribers
// whose buffer is full; consumers re-enumerate on the next event anyway.
func (l *Ledger) commitLocked(token model.TokenID, from, to model.Address) ledger.Confirmation {
	l.seq++
	ev := ledger.TransferEvent{Token: token, From: from, To: to, Seq: l.seq}
	for _, sub := range l.subs {
		if sub.addr != from && sub.addr != to {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return ledger.Confirmation{Token: token, From: from, To: to, Seq: l.seq, At: time.Now().UTC()}
}
