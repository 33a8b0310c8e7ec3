package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"landlock.dev/landlock/model"
)

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// SignChallenge produces the self-authenticating signature consumed by
// custody and storage calls: an Ed25519 signature over sha256(message),
// carrying the signer's public key.
func SignChallenge(message []byte, privateKey ed25519.PrivateKey) model.Signature {
	digest := sha256.Sum256(message)
	return model.Signature{
		Algorithm: model.AlgEd25519,
		PublicKey: append([]byte(nil), privateKey.Public().(ed25519.PublicKey)...),
		Sig:       ed25519.Sign(privateKey, digest[:]),
	}
}

// VerifyChallengeSignature checks that sig endorses message and that the
// carried public key derives subject. Both checks must pass before a
// signature is treated as proof of address control.
func VerifyChallengeSignature(subject model.Address, message []byte, sig model.Signature) error {
	if sig.Algorithm != model.AlgEd25519 {
		return fmt.Errorf("unsupported signature algorithm %q", sig.Algorithm)
	}
	if len(sig.PublicKey) != ed25519.PublicKeySize {
		return errors.New("malformed signature public key")
	}
	derived, err := AddressFromPublicKey(ed25519.PublicKey(sig.PublicKey))
	if err != nil {
		return err
	}
	if derived != subject {
		return fmt.Errorf("signature public key derives %s, not %s", derived, subject)
	}
	digest := sha256.Sum256(message)
	if !ed25519.Verify(ed25519.PublicKey(sig.PublicKey), digest[:], sig.Sig) {
		return errors.New("signature verification failed")
	}
	return nil
}

// SignAttestationEd25519 signs a custody challenge message with the
// service's Ed25519 attestation key.
func SignAttestationEd25519(message []byte, privateKey ed25519.PrivateKey) model.Signature {
	return SignChallenge(message, privateKey)
}

// SignAttestationDilithium3 signs a custody challenge message with the
// service's Dilithium3 attestation key. hashAlg must be one of: sha256,
// sha512, sha3-256.
func SignAttestationDilithium3(message []byte, hashAlg string, privateKey *mode3.PrivateKey) (model.Signature, error) {
	if privateKey == nil {
		return model.Signature{}, fmt.Errorf("missing private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return model.Signature{}, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest, sig)

	var pub [mode3.PublicKeySize]byte
	privateKey.Public().(*mode3.PublicKey).Pack(&pub)
	return model.Signature{
		Algorithm: model.AlgDilithium3,
		PublicKey: pub[:],
		Sig:       sig,
	}, nil
}

// VerifyAttestation verifies a service attestation over a challenge
// message. Dilithium3 attestations are hashed with sha3-256.
func VerifyAttestation(message []byte, sig model.Signature) error {
	switch sig.Algorithm {
	case model.AlgEd25519:
		if len(sig.PublicKey) != ed25519.PublicKeySize {
			return errors.New("malformed attestation public key")
		}
		digest := sha256.Sum256(message)
		if !ed25519.Verify(ed25519.PublicKey(sig.PublicKey), digest[:], sig.Sig) {
			return errors.New("attestation verification failed")
		}
		return nil
	case model.AlgDilithium3:
		if len(sig.PublicKey) != mode3.PublicKeySize {
			return errors.New("malformed attestation public key")
		}
		var packed [mode3.PublicKeySize]byte
		copy(packed[:], sig.PublicKey)
		var pub mode3.PublicKey
		pub.Unpack(&packed)
		digest, err := digestFor("sha3-256", message)
		if err != nil {
			return err
		}
		if !mode3.Verify(&pub, digest, sig.Sig) {
			return errors.New("attestation verification failed")
		}
		return nil
	default:
		return fmt.Errorf("unsupported attestation algorithm %q", sig.Algorithm)
	}
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}
