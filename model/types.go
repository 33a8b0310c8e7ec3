package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Address is a ledger account address: "0x" followed by 40 lowercase hex
// characters (the trailing 20 bytes of Keccak-256 over the account's
// public key).
type Address string

// ZeroAddress is the mint provenance address in transfer events.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// ParseAddress normalizes and validates an account address.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !addressPattern.MatchString(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	return Address(s), nil
}

func (a Address) IsZero() bool { return a == "" || a == ZeroAddress }

// TokenID is a ledger-assigned title handle. IDs are unique and issued
// monotonically; they are never reused.
type TokenID uint64

// Title is one tokenized land title as reported by the ledger.
type Title struct {
	ID      TokenID `json:"id"`
	Pointer string  `json:"pointer"` // CID of the encrypted metadata
	Owner   Address `json:"owner,omitempty"`
}

// Parcel is the decrypted title metadata payload.
type Parcel struct {
	StreetNumber int    `json:"streetNumber"`
	StreetName   string `json:"streetName"`
	Region       string `json:"region"`
	City         string `json:"city"`
	State        string `json:"state"`
	Timestamp    int64  `json:"timestamp"`
}

// EncodeParcel returns the canonical JSON bytes stored (encrypted) for a
// parcel.
func EncodeParcel(p Parcel) ([]byte, error) {
	return json.Marshal(p)
}

// DecodeParcel parses plaintext metadata bytes.
func DecodeParcel(b []byte) (Parcel, error) {
	var p Parcel
	if err := json.Unmarshal(b, &p); err != nil {
		return Parcel{}, err
	}
	return p, nil
}

// PurchaseRequest is the session-local record of an in-flight purchase.
//
// PreviousOwner is a snapshot taken from the ledger at request time. It is
// advisory bookkeeping only: ownership may change between request and
// approval, and the ledger's own authorization check is the sole
// correctness guarantee. Records live only in the session that created
// them; there is no cross-session deduplication.
type PurchaseRequest struct {
	Token         TokenID `json:"token"`
	Buyer         Address `json:"buyer"`
	PreviousOwner Address `json:"previousOwner"`
}

// TransferState is the client-observed phase of a title's transfer. It is
// not persisted anywhere authoritative; it is reconstructed from local
// PurchaseRequest records plus ledger reads.
type TransferState string

const (
	StateAvailable       TransferState = "available"
	StateRequested       TransferState = "requested"
	StateOwnerConfirmed  TransferState = "owner-confirmed"
	StateKeysTransferred TransferState = "keys-transferred"
	StateFailed          TransferState = "failed"
)

// AuthChallenge is a single-use message issued by the custody service.
// The service signs the message with its attestation key so callers can
// verify challenge authenticity before prompting a wallet to sign.
type AuthChallenge struct {
	Subject     Address   `json:"subject"`
	Message     string    `json:"message"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Attestation string    `json:"attestation,omitempty"`
}

// Signature algorithms accepted at service boundaries.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// Signature is a self-authenticating capability token: the public key is
// carried alongside the raw signature so a verifier can check both that the
// key endorses the message and that the key derives the claimed address.
// Signatures are consumed by exactly one privileged call and never stored.
type Signature struct {
	Algorithm string `json:"algorithm"`
	PublicKey []byte `json:"publicKey"`
	Sig       []byte `json:"sig"`
}

// Encode renders the signature in its transport form:
// "<alg>:<b64 pubkey>:<b64 sig>".
func (s Signature) Encode() string {
	return s.Algorithm + ":" +
		base64.StdEncoding.EncodeToString(s.PublicKey) + ":" +
		base64.StdEncoding.EncodeToString(s.Sig)
}

// DecodeSignature parses the transport form produced by Encode.
func DecodeSignature(s string) (Signature, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Signature{}, fmt.Errorf("malformed signature string")
	}
	pub, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Signature{}, fmt.Errorf("malformed signature public key: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return Signature{}, fmt.Errorf("malformed signature bytes: %w", err)
	}
	if parts[0] == "" {
		return Signature{}, fmt.Errorf("missing signature algorithm")
	}
	return Signature{Algorithm: parts[0], PublicKey: pub, Sig: sig}, nil
}
