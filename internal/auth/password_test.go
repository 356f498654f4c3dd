// ABOUTME: Unit tests for bcrypt password hashing and verification
// ABOUTME: Tests distinct salts, successful verification, and mismatch rejection

package auth

import (
	"testing"
)

func TestBcryptHasher_DistinctSalts(t *testing.T) {
	hasher := NewBcryptHasher()

	first, err := hasher.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	second, err := hasher.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password should differ (distinct salts)")
	}

	if !hasher.Verify("s3cret", first) {
		t.Error("Verify() should accept the first digest")
	}
	if !hasher.Verify("s3cret", second) {
		t.Error("Verify() should accept the second digest")
	}
}

func TestBcryptHasher_WrongPassword(t *testing.T) {
	hasher := NewBcryptHasher()

	digest, err := hasher.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
	}{
		{name: "wrong password", password: "wrong"},
		{name: "empty password", password: ""},
		{name: "case difference", password: "S3cret"},
		{name: "trailing space", password: "s3cret "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hasher.Verify(tt.password, digest) {
				t.Errorf("Verify(%q) should have failed", tt.password)
			}
		})
	}
}

func TestBcryptHasher_GarbageDigest(t *testing.T) {
	hasher := NewBcryptHasher()

	if hasher.Verify("s3cret", "not-a-bcrypt-digest") {
		t.Error("Verify() should reject a malformed digest")
	}
	if hasher.Verify("s3cret", "") {
		t.Error("Verify() should reject an empty digest")
	}
}
