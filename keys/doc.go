// Package keys provides key-related helpers for the landlock protocol:
// account-address derivation, challenge signing, and custody-service
// attestation keys.
//
// Stable:
//   - Pure, deterministic primitives for address derivation, role-seed
//     derivation, and signing.
//
// Experimental:
//   - Filesystem-backed key storage and convenience helpers (KeyStore and
//     related functions). These are local-first utilities and are not part
//     of the protocol contract.
package keys
