// Package auth runs the challenge-response handshake against the custody
// service: fetch a single-use challenge for an address, optionally check
// the service's attestation over it, then have the wallet endorse it.
//
// Every privileged custody call needs a fresh signature from this
// handshake. The handshake itself never touches key material; when no
// challenge can be obtained, the caller stops before any key operation is
// attempted.
package auth

import (
	"context"
	"errors"

	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/keys"
	"landlock.dev/landlock/model"
	"landlock.dev/landlock/wallet"
)

// Options tunes the handshake.
type Options struct {
	// VerifyAttestation rejects challenges whose service attestation is
	// missing or does not verify.
	VerifyAttestation bool
}

// Authenticate obtains and signs a challenge for address. The returned
// signature proves control of address for exactly one privileged call.
//
// Failures are reported as model.Error with KindAuthentication, including
// an unreachable custody service and a locked or absent wallet.
func Authenticate(ctx context.Context, svc custody.Custody, signer wallet.Signer, address model.Address, opt Options) (model.Signature, error) {
	ch, err := svc.Challenge(ctx, address)
	if err != nil {
		return model.Signature{}, model.WrapError(model.KindAuthentication, "auth challenge unavailable", err)
	}
	if ch.Subject != address {
		return model.Signature{}, model.NewError(model.KindAuthentication, "challenge issued for wrong subject")
	}

	if opt.VerifyAttestation {
		if ch.Attestation == "" {
			return model.Signature{}, model.NewError(model.KindAuthentication, "challenge carries no service attestation")
		}
		attSig, err := model.DecodeSignature(ch.Attestation)
		if err != nil {
			return model.Signature{}, model.WrapError(model.KindAuthentication, "malformed service attestation", err)
		}
		if err := keys.VerifyAttestation([]byte(ch.Message), attSig); err != nil {
			return model.Signature{}, model.WrapError(model.KindAuthentication, "service attestation rejected", err)
		}
	}

	sig, err := signer.Sign(ctx, []byte(ch.Message))
	if err != nil {
		if errors.Is(err, wallet.ErrSigningUnavailable) {
			return model.Signature{}, model.WrapError(model.KindAuthentication, "signing unavailable", err)
		}
		return model.Signature{}, model.WrapError(model.KindAuthentication, "challenge signing failed", err)
	}
	return sig, nil
}
