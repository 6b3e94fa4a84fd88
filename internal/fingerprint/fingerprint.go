package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Compute hashes the canonical identity string of a certificate and
// returns the digest as 64 lowercase hex characters.
func Compute(in CanonicalInput, secret string) string {
	sum := sha256.Sum256([]byte(Canonicalize(in, secret)))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether the fingerprint recomputed from the given
// identity fields equals the stored digest. A mismatch means the
// recorded identity fields were altered after issuance.
func Matches(in CanonicalInput, secret, stored string) bool {
	return Compute(in, secret) == stored
}
