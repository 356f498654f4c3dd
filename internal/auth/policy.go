// ABOUTME: Authorization policy for transaction operations
// ABOUTME: Ships an owner-agnostic policy: ownership is recorded but not enforced

package auth

import (
	"github.com/splitledger/splitledger/internal/store"
)

// Operation identifies a transaction operation subject to authorization.
type Operation string

// Transaction operations
const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Policy decides whether an authenticated principal may perform an operation
// on a transaction. txn is nil for operations that do not target an existing
// record (create, list).
type Policy interface {
	Authorize(principal *store.User, op Operation, txn *store.Transaction) bool
}

// OwnerAgnosticPolicy allows any authenticated principal to perform any
// operation on any transaction. The ledger is fully shared between members:
// ownership is recorded on each record but grants no exclusive rights.
// Swap in a different Policy to restrict mutations to the owner.
type OwnerAgnosticPolicy struct{}

// Ensure OwnerAgnosticPolicy implements Policy.
var _ Policy = (*OwnerAgnosticPolicy)(nil)

// Authorize permits every operation for any non-nil principal.
func (OwnerAgnosticPolicy) Authorize(principal *store.User, op Operation, txn *store.Transaction) bool {
	return principal != nil
}
