package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"landlock.dev/landlock/model"
)

// AddressFromPublicKey derives the ledger account address for an Ed25519
// public key: "0x" plus the trailing 20 bytes of Keccak-256 over the raw
// key bytes. The derivation is what makes signatures self-authenticating:
// a verifier recomputes the address from the carried public key instead of
// consulting a key directory.
func AddressFromPublicKey(pub ed25519.PublicKey) (model.Address, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(pub)
	sum := h.Sum(nil)
	return model.Address("0x" + hex.EncodeToString(sum[len(sum)-20:])), nil
}

// AddressFromSeed derives the account address for an Ed25519 seed.
func AddressFromSeed(seed []byte) (model.Address, error) {
	if len(seed) != ed25519.SeedSize {
		return "", fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return AddressFromPublicKey(priv.Public().(ed25519.PublicKey))
}
