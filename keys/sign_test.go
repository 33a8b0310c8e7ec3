package keys

import (
	"crypto/ed25519"
	"testing"

	"landlock.dev/landlock/model"
)

type deterministicReader struct{ b byte }

func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

func testKey(t *testing.T, fill byte) (ed25519.PrivateKey, model.Address) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = fill
	}
	priv := ed25519.NewKeyFromSeed(seed)
	addr, err := AddressFromSeed(seed)
	if err != nil {
		t.Fatalf("AddressFromSeed: %v", err)
	}
	return priv, addr
}

func TestSignChallenge_Verifies(t *testing.T) {
	priv, addr := testKey(t, 0x11)

	msg := []byte("landlock-custody-auth: abc for " + string(addr))
	sig := SignChallenge(msg, priv)

	if err := VerifyChallengeSignature(addr, msg, sig); err != nil {
		t.Fatalf("VerifyChallengeSignature: %v", err)
	}
}

func TestVerifyChallengeSignature_WrongSubject(t *testing.T) {
	priv, _ := testKey(t, 0x11)
	_, other := testKey(t, 0x22)

	msg := []byte("challenge")
	sig := SignChallenge(msg, priv)

	if err := VerifyChallengeSignature(other, msg, sig); err == nil {
		t.Fatalf("expected subject mismatch to be rejected")
	}
}

func TestVerifyChallengeSignature_TamperedMessage(t *testing.T) {
	priv, addr := testKey(t, 0x11)

	sig := SignChallenge([]byte("challenge"), priv)
	if err := VerifyChallengeSignature(addr, []byte("challenge2"), sig); err == nil {
		t.Fatalf("expected tampered message to be rejected")
	}
}

func TestSignAttestationDilithium3_Verifies(t *testing.T) {
	_, sk, err := GenerateDilithium3Keypair(&deterministicReader{})
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}

	msg := []byte("challenge attestation")
	sig, err := SignAttestationDilithium3(msg, "sha3-256", sk)
	if err != nil {
		t.Fatalf("SignAttestationDilithium3: %v", err)
	}
	if sig.Algorithm != model.AlgDilithium3 {
		t.Fatalf("unexpected algorithm %q", sig.Algorithm)
	}
	if err := VerifyAttestation(msg, sig); err != nil {
		t.Fatalf("VerifyAttestation: %v", err)
	}
	if err := VerifyAttestation([]byte("other"), sig); err == nil {
		t.Fatalf("expected attestation over other message to fail")
	}
}

func TestSignatureEncodeRoundTrip(t *testing.T) {
	priv, addr := testKey(t, 0x33)
	sig := SignChallenge([]byte("msg"), priv)

	decoded, err := model.DecodeSignature(sig.Encode())
	if err != nil {
		t.Fatalf("DecodeSignature: %v", err)
	}
	if err := VerifyChallengeSignature(addr, []byte("msg"), decoded); err != nil {
		t.Fatalf("decoded signature did not verify: %v", err)
	}
}
