// Package vault seals parcel metadata into encrypted envelopes, stores
// them in the content-addressable store, and parks the decryption key
// with the custody service.
//
// Envelope layout: one version byte, a 24-byte XChaCha20-Poly1305 nonce,
// then the ciphertext. The content pointer is derived from the full
// envelope bytes, so anyone can fetch the blob; only the custody-recorded
// holder can obtain the key that opens it.
package vault

import (
	"context"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"landlock.dev/landlock/auth"
	"landlock.dev/landlock/cidutil"
	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/model"
	"landlock.dev/landlock/storage"
	"landlock.dev/landlock/wallet"
)

const (
	envelopeVersion = 0x01

	// KeySize is the symmetric key length registered with custody.
	KeySize = chacha20poly1305.KeySize
)

// envelopeAAD binds ciphertexts to this envelope format.
var envelopeAAD = []byte("landlock/parcel/v1")

// Vault ties the three collaborators of the sealed-metadata path
// together.
type Vault struct {
	CAS     storage.CAS
	Custody custody.Custody
	Signer  wallet.Signer

	// Auth tunes the challenge handshake run before custody calls.
	Auth auth.Options
}

// Open constructs a Vault.
func Open(cas storage.CAS, svc custody.Custody, signer wallet.Signer) *Vault {
	return &Vault{CAS: cas, Custody: svc, Signer: signer}
}

// UploadEncrypted seals a parcel under a fresh random key, writes the
// envelope to the CAS, and registers the key with custody under the
// signer's address. It returns the content pointer for minting.
func (v *Vault) UploadEncrypted(ctx context.Context, parcel model.Parcel) (string, error) {
	owner, err := v.Signer.Address()
	if err != nil {
		return "", model.WrapError(model.KindAuthentication, "upload failed: no signing address", err)
	}

	plaintext, err := model.EncodeParcel(parcel)
	if err != nil {
		return "", model.WrapError(model.KindStorage, "upload failed: metadata encoding", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", model.WrapError(model.KindStorage, "upload failed: key generation", err)
	}
	envelope, err := seal(key, plaintext)
	if err != nil {
		return "", model.WrapError(model.KindStorage, "upload failed: sealing", err)
	}

	id, err := v.CAS.Put(envelope)
	if err != nil {
		return "", model.WrapError(model.KindStorage, "upload failed: store write", err)
	}
	pointer := id.String()

	sig, err := auth.Authenticate(ctx, v.Custody, v.Signer, owner, v.Auth)
	if err != nil {
		return "", err
	}
	if err := v.Custody.Register(ctx, pointer, owner, key, sig); err != nil {
		return "", model.WrapError(model.KindCustody, "upload failed: key registration", err)
	}
	return pointer, nil
}

// FetchKey authenticates the signer and asks custody to release the key
// for pointer.
func (v *Vault) FetchKey(ctx context.Context, pointer string) ([]byte, error) {
	holder, err := v.Signer.Address()
	if err != nil {
		return nil, model.WrapError(model.KindAuthentication, "key fetch failed: no signing address", err)
	}
	sig, err := auth.Authenticate(ctx, v.Custody, v.Signer, holder, v.Auth)
	if err != nil {
		return nil, err
	}
	key, err := v.Custody.Release(ctx, pointer, holder, sig)
	if err != nil {
		return nil, model.WrapError(model.KindCustody, "key release refused", err)
	}
	return key, nil
}

// Decrypt fetches the envelope behind pointer and opens it with key.
func (v *Vault) Decrypt(ctx context.Context, pointer string, key []byte) (model.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return model.Parcel{}, err
	}
	id, err := cidutil.ParsePointer(pointer)
	if err != nil {
		return model.Parcel{}, model.WrapError(model.KindStorage, "decryption failed", err)
	}
	envelope, err := v.CAS.Get(id)
	if err != nil {
		return model.Parcel{}, model.WrapError(model.KindStorage, "decryption failed: envelope fetch", err)
	}
	plaintext, err := open(key, envelope)
	if err != nil {
		return model.Parcel{}, model.WrapError(model.KindStorage, "decryption failed", err)
	}
	parcel, err := model.DecodeParcel(plaintext)
	if err != nil {
		return model.Parcel{}, model.WrapError(model.KindStorage, "decryption failed: metadata parse", err)
	}
	return parcel, nil
}

// Reveal is the read path in one step: fetch the key, then decrypt.
func (v *Vault) Reveal(ctx context.Context, pointer string) (model.Parcel, error) {
	key, err := v.FetchKey(ctx, pointer)
	if err != nil {
		return model.Parcel{}, err
	}
	return v.Decrypt(ctx, pointer, key)
}

func seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, envelopeVersion)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, envelopeAAD), nil
}

func open(key, envelope []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(envelope) < 1+aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("envelope too short")
	}
	if envelope[0] != envelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", envelope[0])
	}
	nonce := envelope[1 : 1+aead.NonceSize()]
	ciphertext := envelope[1+aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, envelopeAAD)
	if err != nil {
		return nil, fmt.Errorf("envelope authentication failed")
	}
	return plaintext, nil
}
