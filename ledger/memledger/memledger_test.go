package memledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"landlock.dev/landlock/cidutil"
	"landlock.dev/landlock/ledger"
	"landlock.dev/landlock/model"
)

const (
	gov   = model.Address("0x1111111111111111111111111111111111111111")
	buyer = model.Address("0x2222222222222222222222222222222222222222")
	other = model.Address("0x3333333333333333333333333333333333333333")
)

func pointer(t *testing.T, data string) string {
	t.Helper()
	p := cidutil.CIDv1RawSHA256([]byte(data))
	if p == "" {
		t.Fatalf("failed to derive pointer")
	}
	return p
}

func TestMintAndEnumerate(t *testing.T) {
	ctx := context.Background()
	l := New(gov)

	t1, _, err := l.Mint(ctx, gov, pointer(t, "parcel-1"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	t2, _, err := l.Mint(ctx, gov, pointer(t, "parcel-2"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if t2 <= t1 {
		t.Fatalf("expected monotonic token ids, got %d then %d", t1, t2)
	}

	titles, err := ledger.TitlesOwnedBy(ctx, l, gov)
	if err != nil {
		t.Fatalf("TitlesOwnedBy: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(titles))
	}
	if titles[0].ID != t1 || titles[1].ID != t2 {
		t.Fatalf("unexpected enumeration order: %+v", titles)
	}
}

func TestMintRestrictedToIssuer(t *testing.T) {
	ctx := context.Background()
	l := New(gov)

	if _, _, err := l.Mint(ctx, buyer, pointer(t, "parcel")); !errors.Is(err, ledger.ErrNotIssuer) {
		t.Fatalf("expected ErrNotIssuer, got %v", err)
	}
}

func TestMintRejectsMalformedPointer(t *testing.T) {
	ctx := context.Background()
	l := New(gov)

	if _, _, err := l.Mint(ctx, gov, "not-a-cid"); err == nil {
		t.Fatalf("expected malformed pointer to be rejected")
	}
}

func TestTitlesOwnedByZeroBalance(t *testing.T) {
	ctx := context.Background()
	l := New(gov)

	titles, err := ledger.TitlesOwnedBy(ctx, l, other)
	if err != nil {
		t.Fatalf("TitlesOwnedBy: %v", err)
	}
	if len(titles) != 0 {
		t.Fatalf("expected empty sequence, got %d titles", len(titles))
	}
}

func TestRequestPurchaseDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	l := New(gov)
	token, _, err := l.Mint(ctx, gov, pointer(t, "parcel"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if _, err := l.RequestPurchase(ctx, buyer, token); err != nil {
		t.Fatalf("RequestPurchase: %v", err)
	}
	if _, err := l.RequestPurchase(ctx, buyer, token); !errors.Is(err, ledger.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
	// A different buyer is rejected the same way while one request is pending.
	if _, err := l.RequestPurchase(ctx, other, token); !errors.Is(err, ledger.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest for second buyer, got %v", err)
	}
}

func TestRequestPurchaseOwnTitle(t *testing.T) {
	ctx := context.Background()
	l := New(gov)
	token, _, err := l.Mint(ctx, gov, pointer(t, "parcel"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := l.RequestPurchase(ctx, gov, token); !errors.Is(err, ledger.ErrOwnTitle) {
		t.Fatalf("expected ErrOwnTitle, got %v", err)
	}
}

func TestApprovePurchaseTransfersOwnership(t *testing.T) {
	ctx := context.Background()
	l := New(gov)
	token, _, err := l.Mint(ctx, gov, pointer(t, "parcel"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := l.RequestPurchase(ctx, buyer, token); err != nil {
		t.Fatalf("RequestPurchase: %v", err)
	}

	conf, err := l.ApprovePurchase(ctx, gov, token)
	if err != nil {
		t.Fatalf("ApprovePurchase: %v", err)
	}
	if conf.From != gov || conf.To != buyer || conf.Token != token {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}

	owner, err := l.CurrentOwner(ctx, token)
	if err != nil {
		t.Fatalf("CurrentOwner: %v", err)
	}
	if owner != buyer {
		t.Fatalf("expected owner %s after approval, got %s", buyer, owner)
	}

	// The pending request is consumed.
	if _, err := l.PendingBuyer(ctx, token); !errors.Is(err, ledger.ErrNoPendingRequest) {
		t.Fatalf("expected ErrNoPendingRequest, got %v", err)
	}
}

func TestApprovePurchaseAuthorization(t *testing.T) {
	ctx := context.Background()
	l := New(gov)
	token, _, err := l.Mint(ctx, gov, pointer(t, "parcel"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if _, err := l.ApprovePurchase(ctx, gov, token); !errors.Is(err, ledger.ErrNoPendingRequest) {
		t.Fatalf("expected ErrNoPendingRequest, got %v", err)
	}
	if _, err := l.RequestPurchase(ctx, buyer, token); err != nil {
		t.Fatalf("RequestPurchase: %v", err)
	}
	if _, err := l.ApprovePurchase(ctx, other, token); !errors.Is(err, ledger.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestUnknownTitle(t *testing.T) {
	ctx := context.Background()
	l := New(gov)
	if _, err := l.CurrentOwner(ctx, 42); !errors.Is(err, ledger.ErrUnknownTitle) {
		t.Fatalf("expected ErrUnknownTitle, got %v", err)
	}
	if _, err := l.TokenURI(ctx, 42); !errors.Is(err, ledger.ErrUnknownTitle) {
		t.Fatalf("expected ErrUnknownTitle, got %v", err)
	}
}

func TestWatchDeliversTransfers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := New(gov)
	events, err := l.Watch(ctx, buyer)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	token, _, err := l.Mint(ctx, gov, pointer(t, "parcel"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := l.RequestPurchase(ctx, buyer, token); err != nil {
		t.Fatalf("RequestPurchase: %v", err)
	}
	if _, err := l.ApprovePurchase(ctx, gov, token); err != nil {
		t.Fatalf("ApprovePurchase: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Token != token || ev.From != gov || ev.To != buyer {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for transfer event")
	}

	cancel()
	select {
	case _, open := <-events:
		if open {
			t.Fatalf("expected channel to close after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for channel close")
	}
}

func TestMintEmitsZeroAddressProvenance(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := New(gov)
	events, err := l.Watch(ctx, gov)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	token, _, err := l.Mint(ctx, gov, pointer(t, "parcel"))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	select {
	case ev := <-events:
		if ev.From != model.ZeroAddress || ev.To != gov || ev.Token != token {
			t.Fatalf("unexpected mint event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for mint event")
	}
}
