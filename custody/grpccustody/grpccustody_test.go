package grpccustody

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"landlock.dev/landlock/cidutil"
	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/custody/memcustody"
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

func dialTestCustody(t *testing.T, backing custody.Custody) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterCustodyServer(srv, &Server{Custody: backing})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewCustodyClient(cc), Timeout: 2 * time.Second}
}

func prove(t *testing.T, c custody.Custody, acct account) model.Signature {
	t.Helper()
	ch, err := c.Challenge(context.Background(), acct.addr)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	return keys.SignChallenge([]byte(ch.Message), acct.priv)
}

func TestGRPCCustody_RoundTrip(t *testing.T) {
	ctx := context.Background()
	seed := bytes.Repeat([]byte{9}, ed25519.SeedSize)
	backing, err := memcustody.New(memcustody.Options{AttestEd25519: ed25519.NewKeyFromSeed(seed)})
	if err != nil {
		t.Fatalf("memcustody.New: %v", err)
	}
	client := dialTestCustody(t, backing)

	seller := testAccount(t, 1)
	buyer := testAccount(t, 2)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))
	key := bytes.Repeat([]byte{7}, 32)

	// The attestation survives the wire and still verifies.
	ch, err := client.Challenge(ctx, seller.addr)
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	attSig, err := model.DecodeSignature(ch.Attestation)
	if err != nil {
		t.Fatalf("DecodeSignature: %v", err)
	}
	if err := keys.VerifyAttestation([]byte(ch.Message), attSig); err != nil {
		t.Fatalf("VerifyAttestation: %v", err)
	}

	if err := client.Register(ctx, pointer, seller.addr, key, keys.SignChallenge([]byte(ch.Message), seller.priv)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := client.Release(ctx, pointer, seller.addr, prove(t, client, seller))
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("Release returned wrong key material")
	}

	if err := client.Transfer(ctx, seller.addr, pointer, buyer.addr, prove(t, client, seller), true); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if _, err := client.Release(ctx, pointer, buyer.addr, prove(t, client, buyer)); err != nil {
		t.Fatalf("Release by new holder: %v", err)
	}
}

func TestGRPCCustody_SentinelMapping(t *testing.T) {
	ctx := context.Background()
	backing, _ := memcustody.New(memcustody.Options{})
	client := dialTestCustody(t, backing)

	owner := testAccount(t, 1)
	other := testAccount(t, 2)
	pointer := cidutil.CIDv1RawSHA256([]byte("sealed parcel"))

	if _, err := client.Release(ctx, pointer, owner.addr, prove(t, client, owner)); !errors.Is(err, custody.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound over the wire, got %v", err)
	}

	if err := client.Register(ctx, pointer, owner.addr, []byte("k"), prove(t, client, owner)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := client.Register(ctx, pointer, other.addr, []byte("k2"), prove(t, client, other)); !errors.Is(err, custody.ErrAlreadyBound) {
		t.Fatalf("expected ErrAlreadyBound over the wire, got %v", err)
	}

	if _, err := client.Release(ctx, pointer, other.addr, prove(t, client, other)); !errors.Is(err, custody.ErrNotAuthorizedHolder) {
		t.Fatalf("expected ErrNotAuthorizedHolder over the wire, got %v", err)
	}

	// Replayed signature.
	sig := prove(t, client, owner)
	if _, err := client.Release(ctx, pointer, owner.addr, sig); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := client.Release(ctx, pointer, owner.addr, sig); !errors.Is(err, custody.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied over the wire, got %v", err)
	}

	if err := client.Transfer(ctx, owner.addr, pointer, other.addr, prove(t, client, owner), false); !errors.Is(err, custody.ErrTransferRejected) {
		t.Fatalf("expected ErrTransferRejected over the wire, got %v", err)
	}
}
