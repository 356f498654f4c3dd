// ABOUTME: Password hashing and verification using bcrypt
// ABOUTME: Each hash carries its own random salt so equal passwords never share digests

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher defines the interface for one-way credential hashing.
type PasswordHasher interface {
	// Hash produces a salted digest of the plaintext. Two calls on the
	// same plaintext yield different digests; both verify.
	Hash(plaintext string) (string, error)

	// Verify reports whether the plaintext matches the digest.
	Verify(plaintext, digest string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
// Hashing is intentionally slow; the cost is paid synchronously on every
// authentication attempt and never cached.
type BcryptHasher struct {
	cost int
}

// Ensure BcryptHasher implements PasswordHasher.
var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the default bcrypt cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash produces a salted bcrypt digest of the plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify re-hashes the plaintext with the digest's embedded salt and compares.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// dummyHash is a valid bcrypt digest compared against when a username lookup
// fails, keeping authentication timing independent of username existence.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// compareDummy burns one bcrypt comparison's worth of time.
func compareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
