// ABOUTME: Unit tests for the owner-agnostic authorization policy
// ABOUTME: Pins the deliberate choice that ownership does not restrict access

package auth

import (
	"testing"

	"github.com/splitledger/splitledger/internal/store"
)

// The ledger is shared: any authenticated principal may read, modify, or
// delete any transaction, including ones owned by someone else. This is a
// deliberate policy choice, not an oversight, and this test pins it.
func TestOwnerAgnosticPolicy_NonOwnerAllowed(t *testing.T) {
	policy := OwnerAgnosticPolicy{}

	alice := &store.User{ID: 1, Username: "alice"}
	bobsTransaction := &store.Transaction{ID: 10, Owner: 2, Description: "Lunch"}

	for _, op := range []Operation{OpRead, OpCreate, OpUpdate, OpDelete} {
		if !policy.Authorize(alice, op, bobsTransaction) {
			t.Errorf("Authorize(alice, %s, bob's transaction) = false, want true", op)
		}
	}
}

func TestOwnerAgnosticPolicy_NilPrincipalDenied(t *testing.T) {
	policy := OwnerAgnosticPolicy{}

	if policy.Authorize(nil, OpRead, nil) {
		t.Error("Authorize(nil principal) = true, want false")
	}
}
