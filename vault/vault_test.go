package vault

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"

	"landlock.dev/landlock/custody/memcustody"
	"landlock.dev/landlock/model"
	"landlock.dev/landlock/storage/memcas"
	"landlock.dev/landlock/wallet"
)

var parcel = model.Parcel{
	StreetNumber: 42,
	StreetName:   "Harbor Road",
	Region:       "North Ward",
	City:         "Port Alma",
	State:        "CA",
	Timestamp:    1_700_000_000,
}

func testWallet(t *testing.T, fill byte) *wallet.Local {
	t.Helper()
	w, err := wallet.NewLocal(bytes.Repeat([]byte{fill}, ed25519.SeedSize))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return w
}

func TestUploadRevealRoundTrip(t *testing.T) {
	ctx := context.Background()
	cas := memcas.New()
	svc, err := memcustody.New(memcustody.Options{})
	if err != nil {
		t.Fatalf("memcustody.New: %v", err)
	}

	v := Open(cas, svc, testWallet(t, 1))
	pointer, err := v.UploadEncrypted(ctx, parcel)
	if err != nil {
		t.Fatalf("UploadEncrypted: %v", err)
	}

	got, err := v.Reveal(ctx, pointer)
	if err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if got != parcel {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestRevealDeniedToNonHolder(t *testing.T) {
	ctx := context.Background()
	cas := memcas.New()
	svc, _ := memcustody.New(memcustody.Options{})

	owner := Open(cas, svc, testWallet(t, 1))
	pointer, err := owner.UploadEncrypted(ctx, parcel)
	if err != nil {
		t.Fatalf("UploadEncrypted: %v", err)
	}

	intruder := Open(cas, svc, testWallet(t, 2))
	_, err = intruder.Reveal(ctx, pointer)
	if !model.IsKind(err, model.KindCustody) {
		t.Fatalf("expected KindCustody, got %v", err)
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	ctx := context.Background()
	cas := memcas.New()
	svc, _ := memcustody.New(memcustody.Options{})

	v := Open(cas, svc, testWallet(t, 1))
	pointer, err := v.UploadEncrypted(ctx, parcel)
	if err != nil {
		t.Fatalf("UploadEncrypted: %v", err)
	}

	wrong := bytes.Repeat([]byte{0xAA}, KeySize)
	if _, err := v.Decrypt(ctx, pointer, wrong); !model.IsKind(err, model.KindStorage) {
		t.Fatalf("expected KindStorage for wrong key, got %v", err)
	}
}

func TestDecryptRejectsGarbagePlaintext(t *testing.T) {
	key := bytes.Repeat([]byte{1}, KeySize)
	envelope, err := seal(key, []byte("not json"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	cas := memcas.New()
	id, err := cas.Put(envelope)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	svc, _ := memcustody.New(memcustody.Options{})
	v := Open(cas, svc, testWallet(t, 1))
	if _, err := v.Decrypt(context.Background(), id.String(), key); !model.IsKind(err, model.KindStorage) {
		t.Fatalf("expected KindStorage for unparseable plaintext, got %v", err)
	}
}
