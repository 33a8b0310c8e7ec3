package auth

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"

	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/custody/memcustody"
	"landlock.dev/landlock/keys"
	"landlock.dev/landlock/model"
	"landlock.dev/landlock/wallet"
)

func testWallet(t *testing.T, fill byte) *wallet.Local {
	t.Helper()
	w, err := wallet.NewLocal(bytes.Repeat([]byte{fill}, ed25519.SeedSize))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return w
}

type downCustody struct{ custody.Custody }

func (downCustody) Challenge(ctx context.Context, subject model.Address) (model.AuthChallenge, error) {
	return model.AuthChallenge{}, custody.ErrChallengeUnavailable
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, err := memcustody.New(memcustody.Options{})
	if err != nil {
		t.Fatalf("memcustody.New: %v", err)
	}
	w := testWallet(t, 1)
	addr, _ := w.Address()

	sig, err := Authenticate(ctx, svc, w, addr, Options{})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if sig.Algorithm != model.AlgEd25519 {
		t.Fatalf("unexpected signature algorithm %q", sig.Algorithm)
	}
}

func TestAuthenticateChallengeUnavailable(t *testing.T) {
	w := testWallet(t, 1)
	addr, _ := w.Address()

	_, err := Authenticate(context.Background(), downCustody{}, w, addr, Options{})
	if !model.IsKind(err, model.KindAuthentication) {
		t.Fatalf("expected KindAuthentication, got %v", err)
	}
}

func TestAuthenticateSigningUnavailable(t *testing.T) {
	svc, _ := memcustody.New(memcustody.Options{})
	w := testWallet(t, 1)
	addr, _ := w.Address()

	var locked *wallet.Local
	_, err := Authenticate(context.Background(), svc, locked, addr, Options{})
	if !model.IsKind(err, model.KindAuthentication) {
		t.Fatalf("expected KindAuthentication, got %v", err)
	}
}

func TestAuthenticateVerifiesAttestation(t *testing.T) {
	ctx := context.Background()
	w := testWallet(t, 1)
	addr, _ := w.Address()

	// No attestation key configured: strict mode must refuse.
	bare, _ := memcustody.New(memcustody.Options{})
	if _, err := Authenticate(ctx, bare, w, addr, Options{VerifyAttestation: true}); !model.IsKind(err, model.KindAuthentication) {
		t.Fatalf("expected KindAuthentication for unattested challenge, got %v", err)
	}

	seed := bytes.Repeat([]byte{9}, ed25519.SeedSize)
	attested, err := memcustody.New(memcustody.Options{AttestEd25519: ed25519.NewKeyFromSeed(seed)})
	if err != nil {
		t.Fatalf("memcustody.New: %v", err)
	}
	sig, err := Authenticate(ctx, attested, w, addr, Options{VerifyAttestation: true})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := keys.VerifyChallengeSignature(addr, nil, sig); err == nil {
		t.Fatalf("signature unexpectedly verifies against an empty message")
	}
}
