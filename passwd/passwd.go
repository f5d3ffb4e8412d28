// Package passwd implements the password-hashing policy: salted, adaptive
// bcrypt digests and constant-time verification.
//
// A digest produced by Hash is self-contained: the bcrypt format embeds the
// algorithm identifier, the cost factor, and a freshly generated random salt,
// so Verify needs nothing besides the digest itself.
package passwd

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for new digests.
const DefaultCost = bcrypt.DefaultCost

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
// Callers validate length bounds before hashing.
const MaxPasswordLength = 72

// Hash derives a salted digest of the plaintext password. It does not fail
// for any password that satisfies the length bounds enforced by the caller.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest. The comparison inside
// bcrypt is constant-time. A malformed digest verifies as false, never as an
// error: the caller treats both the same way, as invalid credentials.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
