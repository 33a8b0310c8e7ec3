package memcustody

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"testing"
	"time"

	"landlock.dev/landlock/cidutil"
	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/keys"
	"landlock.dev/landlock/model"
)

type account struct {
	priv ed25519.PrivateKey
	addr model.Address
}

func testAccount(t *testing.T, fill byte) account {
	t.Helper()
	seed := bytes.Repeat([]byte{fill}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)
	addr, err := keys.AddressFromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		t.Fatalf("AddressFromPublicKey: %v", err)
	}
	return account{priv: priv, addr: addr}
}

// prove obtains a fresh challenge for acct and signs it.
func prove(t *testing.T, svc *Service, acct account) model.Signature {
	t.Helper()
	ch, err := svc.Challenge(context.Background(), acct.addr)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	return keys.SignChallenge([]byte(ch.Message), acct.priv)
}

func TestRegisterAndRelease(t *testing.T) {
	ctx := context.Background()
	svc, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	owner := testAccount(t, 1)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))
	key := bytes.Repeat([]byte{7}, 32)

	if err := svc.Register(ctx, pointer, owner.addr, key, prove(t, svc, owner)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.Release(ctx, pointer, owner.addr, prove(t, svc, owner))
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("Release returned wrong key material")
	}
}

func TestRegisterFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := New(Options{})
	owner := testAccount(t, 1)
	other := testAccount(t, 2)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))

	if err := svc.Register(ctx, pointer, owner.addr, []byte("k1"), prove(t, svc, owner)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := svc.Register(ctx, pointer, other.addr, []byte("k2"), prove(t, svc, other))
	if !errors.Is(err, custody.ErrAlreadyBound) {
		t.Fatalf("expected ErrAlreadyBound, got %v", err)
	}
}

func TestReleaseAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, _ := New(Options{})
	owner := testAccount(t, 1)
	intruder := testAccount(t, 2)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))

	if err := svc.Register(ctx, pointer, owner.addr, []byte("k"), prove(t, svc, owner)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Valid proof of a different address: authenticated but not the holder.
	if _, err := svc.Release(ctx, pointer, intruder.addr, prove(t, svc, intruder)); !errors.Is(err, custody.ErrNotAuthorizedHolder) {
		t.Fatalf("expected ErrNotAuthorizedHolder, got %v", err)
	}

	// Signature by the wrong key over the holder's challenge.
	ch, err := svc.Challenge(ctx, owner.addr)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	forged := keys.SignChallenge([]byte(ch.Message), intruder.priv)
	if _, err := svc.Release(ctx, pointer, owner.addr, forged); !errors.Is(err, custody.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	if _, err := svc.Release(ctx, cidutil.CIDv1RawSHA256([]byte("other")), owner.addr, prove(t, svc, owner)); !errors.Is(err, custody.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestChallengeSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _ := New(Options{})
	owner := testAccount(t, 1)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))

	if err := svc.Register(ctx, pointer, owner.addr, []byte("k"), prove(t, svc, owner)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sig := prove(t, svc, owner)
	if _, err := svc.Release(ctx, pointer, owner.addr, sig); err != nil {
		t.Fatalf("Release: %v", err)
	}
	// Replay of the consumed signature.
	if _, err := svc.Release(ctx, pointer, owner.addr, sig); !errors.Is(err, custody.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied on replay, got %v", err)
	}
}

func TestChallengeExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	svc, _ := New(Options{
		ChallengeTTL: time.Minute,
		Now:          func() time.Time { return now },
	})
	owner := testAccount(t, 1)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))

	if err := svc.Register(ctx, pointer, owner.addr, []byte("k"), prove(t, svc, owner)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sig := prove(t, svc, owner)
	now = now.Add(2 * time.Minute)
	if _, err := svc.Release(ctx, pointer, owner.addr, sig); !errors.Is(err, custody.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied after expiry, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	svc, _ := New(Options{})
	seller := testAccount(t, 1)
	buyer := testAccount(t, 2)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))

	if err := svc.Register(ctx, pointer, seller.addr, []byte("k"), prove(t, svc, seller)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Without the confirmation attestation the transfer must be refused.
	err := svc.Transfer(ctx, seller.addr, pointer, buyer.addr, prove(t, svc, seller), false)
	if !errors.Is(err, custody.ErrTransferRejected) {
		t.Fatalf("expected ErrTransferRejected without attestation, got %v", err)
	}
	if holder, _ := svc.Holder(pointer); holder != seller.addr {
		t.Fatalf("holder changed on rejected transfer: %s", holder)
	}

	if err := svc.Transfer(ctx, seller.addr, pointer, buyer.addr, prove(t, svc, seller), true); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if holder, _ := svc.Holder(pointer); holder != buyer.addr {
		t.Fatalf("holder not re-associated: %s", holder)
	}

	// The seller can no longer release; the buyer can.
	if _, err := svc.Release(ctx, pointer, seller.addr, prove(t, svc, seller)); !errors.Is(err, custody.ErrNotAuthorizedHolder) {
		t.Fatalf("expected ErrNotAuthorizedHolder for previous owner, got %v", err)
	}
	if _, err := svc.Release(ctx, pointer, buyer.addr, prove(t, svc, buyer)); err != nil {
		t.Fatalf("Release by new holder: %v", err)
	}
}

func TestChallengeAttestation(t *testing.T) {
	seed := bytes.Repeat([]byte{9}, ed25519.SeedSize)
	svc, err := New(Options{AttestEd25519: ed25519.NewKeyFromSeed(seed)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	owner := testAccount(t, 1)

	ch, err := svc.Challenge(context.Background(), owner.addr)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	if ch.Attestation == "" {
		t.Fatalf("expected attested challenge")
	}
	sig, err := model.DecodeSignature(ch.Attestation)
	if err != nil {
		t.Fatalf("DecodeSignature: %v", err)
	}
	if err := keys.VerifyAttestation([]byte(ch.Message), sig); err != nil {
		t.Fatalf("VerifyAttestation: %v", err)
	}
}
