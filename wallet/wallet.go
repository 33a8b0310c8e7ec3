// Package wallet models the signing capability as an injected port rather
// than an ambient global. A wallet can be absent or locked; callers must
// treat ErrSigningUnavailable as an authentication failure, not a crash.
package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"

	"landlock.dev/landlock/keys"
	"landlock.dev/landlock/model"
)

// ErrSigningUnavailable reports that no usable key material is held for
// the requested address.
var ErrSigningUnavailable = errors.New("wallet: signing unavailable")

// Signer is the capability a coordinator needs from a wallet: a stable
// account address and the ability to endorse challenge messages.
type Signer interface {
	Address() (model.Address, error)
	Sign(ctx context.Context, message []byte) (model.Signature, error)
}

// Local is a Signer backed by an in-memory Ed25519 key, typically loaded
// from the filesystem keystore.
type Local struct {
	priv ed25519.PrivateKey
	addr model.Address
}

// NewLocal builds a Local wallet from an Ed25519 seed.
func NewLocal(seed []byte) (*Local, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrSigningUnavailable
	}
	addr, err := keys.AddressFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &Local{priv: ed25519.NewKeyFromSeed(seed), addr: addr}, nil
}

// Open loads a wallet from a keystore using the same signer-resolution
// rules as the CLI (seed hex, key file, or stored name/role).
func Open(ks *keys.KeyStore, seedHex, signerName, signerRole, keyFile string) (*Local, error) {
	seed, err := ks.LoadSeed(seedHex, signerName, signerRole, keyFile)
	if err != nil {
		return nil, errors.Join(ErrSigningUnavailable, err)
	}
	return NewLocal(seed)
}

func (w *Local) Address() (model.Address, error) {
	if w == nil || w.priv == nil {
		return "", ErrSigningUnavailable
	}
	return w.addr, nil
}

func (w *Local) Sign(ctx context.Context, message []byte) (model.Signature, error) {
	if w == nil || w.priv == nil {
		return model.Signature{}, ErrSigningUnavailable
	}
	if err := ctx.Err(); err != nil {
		return model.Signature{}, err
	}
	return keys.SignChallenge(message, w.priv), nil
}
