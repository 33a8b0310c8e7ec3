// Package memcustody is the reference in-process custody service. It
// issues single-use auth challenges, verifies self-authenticating
// signatures against them, and tracks one authorized holder per content
// pointer. landlock-custodyd serves it over gRPC.
package memcustody

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"landlock.dev/landlock/cidutil"
	"landlock.dev/landlock/custody"
	"landlock.dev/landlock/keys"
	"landlock.dev/landlock/model"
)

// DefaultChallengeTTL bounds how long an issued challenge stays
// redeemable.
const DefaultChallengeTTL = 2 * time.Minute

const nonceSize = 16

type challenge struct {
	message   string
	expiresAt time.Time
}

type binding struct {
	holder model.Address
	key    []byte
}

// Options configures a Service. At most one attestation key may be set;
// with neither set, challenges carry no attestation.
type Options struct {
	ChallengeTTL time.Duration

	AttestEd25519    ed25519.PrivateKey
	AttestDilithium3 *mode3.PrivateKey

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service is an in-memory custody.Custody. Construct with New.
type Service struct {
	mu  sync.Mutex
	opt Options

	challenges map[model.Address][]challenge
	bindings   map[string]*binding
}

var _ custody.Custody = (*Service)(nil)

// New constructs a custody service.
func New(opt Options) (*Service, error) {
	if opt.AttestEd25519 != nil && opt.AttestDilithium3 != nil {
		return nil, fmt.Errorf("memcustody: at most one attestation key")
	}
	if opt.ChallengeTTL <= 0 {
		opt.ChallengeTTL = DefaultChallengeTTL
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Service{
		opt:        opt,
		challenges: make(map[model.Address][]challenge),
		bindings:   make(map[string]*binding),
	}, nil
}

func (s *Service) Challenge(ctx context.Context, subject model.Address) (model.AuthChallenge, error) {
	if err := ctx.Err(); err != nil {
		return model.AuthChallenge{}, err
	}
	if _, err := model.ParseAddress(string(subject)); err != nil {
		return model.AuthChallenge{}, fmt.Errorf("%w: %v", custody.ErrChallengeUnavailable, err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return model.AuthChallenge{}, fmt.Errorf("%w: %v", custody.ErrChallengeUnavailable, err)
	}
	now := s.opt.Now()
	ch := challenge{
		message:   fmt.Sprintf("landlock-custody-auth:%s:%s", hex.EncodeToString(nonce), subject),
		expiresAt: now.Add(s.opt.ChallengeTTL),
	}

	attestation := ""
	switch {
	case s.opt.AttestEd25519 != nil:
		attestation = keys.SignAttestationEd25519([]byte(ch.message), s.opt.AttestEd25519).Encode()
	case s.opt.AttestDilithium3 != nil:
		sig, err := keys.SignAttestationDilithium3([]byte(ch.message), "sha3-256", s.opt.AttestDilithium3)
		if err != nil {
			return model.AuthChallenge{}, fmt.Errorf("%w: %v", custody.ErrChallengeUnavailable, err)
		}
		attestation = sig.Encode()
	}

	s.mu.Lock()
	s.pruneLocked(now)
	s.challenges[subject] = append(s.challenges[subject], ch)
	s.mu.Unlock()

	return model.AuthChallenge{
		Subject:     subject,
		Message:     ch.message,
		ExpiresAt:   ch.expiresAt,
		Attestation: attestation,
	}, nil
}

func (s *Service) Register(ctx context.Context, pointer string, owner model.Address, keyMaterial []byte, sig model.Signature) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cidutil.ValidatePointer(pointer); err != nil {
		return fmt.Errorf("%w: %v", custody.ErrKeyNotFound, err)
	}
	if len(keyMaterial) == 0 {
		return fmt.Errorf("%w: empty key material", custody.ErrAccessDenied)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.redeemLocked(owner, sig); err != nil {
		return fmt.Errorf("%w: %v", custody.ErrAccessDenied, err)
	}
	if _, exists := s.bindings[pointer]; exists {
		return custody.ErrAlreadyBound
	}
	s.bindings[pointer] = &binding{
		holder: owner,
		key:    append([]byte(nil), keyMaterial...),
	}
	return nil
}

func (s *Service) Release(ctx context.Context, pointer string, holder model.Address, sig model.Signature) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.redeemLocked(holder, sig); err != nil {
		return nil, fmt.Errorf("%w: %v", custody.ErrAccessDenied, err)
	}
	b, ok := s.bindings[pointer]
	if !ok {
		return nil, custody.ErrKeyNotFound
	}
	if b.holder != holder {
		return nil, custody.ErrNotAuthorizedHolder
	}
	return append([]byte(nil), b.key...), nil
}

func (s *Service) Transfer(ctx context.Context, from model.Address, pointer string, to model.Address, sig model.Signature, attestConfirmed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !attestConfirmed {
		return fmt.Errorf("%w: caller did not attest ledger confirmation", custody.ErrTransferRejected)
	}
	if _, err := model.ParseAddress(string(to)); err != nil {
		return fmt.Errorf("%w: %v", custody.ErrTransferRejected, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.redeemLocked(from, sig); err != nil {
		return fmt.Errorf("%w: %v", custody.ErrTransferRejected, err)
	}
	b, ok := s.bindings[pointer]
	if !ok {
		return custody.ErrKeyNotFound
	}
	if b.holder != from {
		return fmt.Errorf("%w: %s is not the authorized holder", custody.ErrTransferRejected, from)
	}
	b.holder = to
	return nil
}

// Holder reports the recorded authorized holder for a pointer. Intended
// for tests and operator tooling; no authentication required.
func (s *Service) Holder(pointer string) (model.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bindings[pointer]
	if !ok {
		return "", false
	}
	return b.holder, true
}

// redeemLocked finds a live challenge for subject that sig endorses,
// consumes it, and returns nil. A signature over an expired, already
// consumed, or never issued challenge fails.
func (s *Service) redeemLocked(subject model.Address, sig model.Signature) error {
	now := s.opt.Now()
	s.pruneLocked(now)

	live := s.challenges[subject]
	for i, ch := range live {
		if keys.VerifyChallengeSignature(subject, []byte(ch.message), sig) != nil {
			continue
		}
		s.challenges[subject] = append(live[:i:i], live[i+1:]...)
		if len(s.challenges[subject]) == 0 {
			delete(s.challenges, subject)
		}
		return nil
	}
	return fmt.Errorf("no live challenge matches signature for %s", subject)
}

func (s *Service) pruneLocked(now time.Time) {
	for subject, live := range s.challenges {
		kept := live[:0]
		for _, ch := range live {
			if now.Before(ch.expiresAt) {
				kept = append(kept, ch)
			}
		}
		if len(kept) == 0 {
			delete(s.challenges, subject)
			continue
		}
		s.challenges[subject] = kept
	}
}
