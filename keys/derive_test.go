package keys

import (
	"crypto/ed25519"
	"strings"
	"testing"
)

func TestDeriveRoleSeedDeterministic(t *testing.T) {
	root := make([]byte, ed25519.SeedSize)
	for i := range root {
		root[i] = byte(i)
	}

	a, err := DeriveRoleSeed(root, "attest")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	b, err := DeriveRoleSeed(root, "attest")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic derivation")
	}

	c, err := DeriveRoleSeed(root, "issuer")
	if err != nil {
		t.Fatalf("DeriveRoleSeed: %v", err)
	}
	if string(a) == string(c) {
		t.Fatalf("expected different roles to derive different seeds")
	}
}

func TestAddressFromSeedFormat(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}
	addr, err := AddressFromSeed(seed)
	if err != nil {
		t.Fatalf("AddressFromSeed: %v", err)
	}
	s := string(addr)
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		t.Fatalf("expected 0x-prefixed 40-hex address, got %q", s)
	}
	if s != strings.ToLower(s) {
		t.Fatalf("expected lowercase hex address, got %q", s)
	}
}
