// Package cidutil pins the content-pointer contract used throughout the
// repository: CIDv1 with the "raw" multicodec and a sha2-256 multihash.
// Every encrypted metadata blob is addressed this way, and every boundary
// that accepts a pointer string validates it here first.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ParsePointer decodes a content pointer and enforces the repository's CID
// contract (CIDv1, raw codec, sha2-256).
func ParsePointer(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("invalid content pointer: %w", err)
	}
	if id.Version() != 1 || id.Type() != uint64(cid.Raw) {
		return cid.Undef, fmt.Errorf("content pointer %s is not CIDv1 raw", s)
	}
	if id.Prefix().MhType != multihash.SHA2_256 {
		return cid.Undef, fmt.Errorf("content pointer %s is not sha2-256", s)
	}
	return id, nil
}

// ValidatePointer reports whether s is a well-formed content pointer.
func ValidatePointer(s string) error {
	_, err := ParsePointer(s)
	return err
}
