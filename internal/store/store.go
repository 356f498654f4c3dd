// ABOUTME: Store interfaces and data types for splitledger persistence
// ABOUTME: Defines User, Transaction structs and the UserStore/TransactionStore interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when trying to create a user with an existing username
var ErrUsernameExists = errors.New("username already exists")

// ErrUnknownOwner is returned when a transaction references a user that does not exist
var ErrUnknownOwner = errors.New("owner references unknown user")

// User represents a principal who can authenticate against the ledger.
// The PasswordHash is a bcrypt digest and is never sent over the wire.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Transaction represents a single shared-expense record in the ledger.
// Owner is always the id of the principal that created the record.
type Transaction struct {
	ID           int64
	Description  string
	Date         string // opaque, stored as given
	Owner        int64
	Participants string
	Price        int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TransactionFields holds the mutable fields of a transaction for a full
// replacement update. Every field is applied as-is; there is no partial merge.
type TransactionFields struct {
	Description  string
	Date         string
	Owner        int64
	Participants string
	Price        int64
}

// UserStore defines the interface for user persistence
type UserStore interface {
	// CreateUser inserts a new user and assigns its id.
	// Returns ErrUsernameExists if the username is already taken.
	CreateUser(ctx context.Context, user *User) error

	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// TransactionStore defines the interface for transaction persistence.
// Mutations run inside a database transaction: they either fully apply
// or leave the ledger untouched.
type TransactionStore interface {
	// CreateTransaction inserts a new transaction and assigns its id.
	// Returns ErrUnknownOwner if txn.Owner references no user.
	CreateTransaction(ctx context.Context, txn *Transaction) error

	GetTransaction(ctx context.Context, id int64) (*Transaction, error)

	// ListTransactions returns all transactions. Order is unspecified but
	// stable for a given database state.
	ListTransactions(ctx context.Context) ([]*Transaction, error)

	// UpdateTransaction replaces all mutable fields of the transaction.
	// Returns ErrNotFound if the id does not exist.
	UpdateTransaction(ctx context.Context, id int64, fields TransactionFields) (*Transaction, error)

	// DeleteTransaction removes the transaction.
	// Returns ErrNotFound if the id does not exist.
	DeleteTransaction(ctx context.Context, id int64) error
}

// Store combines all persistence interfaces plus resource cleanup
type Store interface {
	UserStore
	TransactionStore

	// Close releases any resources held by the store
	Close() error
}
