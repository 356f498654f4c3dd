// Package store provides persistent storage for splitledger using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with two
// specialized interfaces:
//
//   - UserStore: Principal records keyed by id and username
//   - TransactionStore: The shared ledger of transaction records
//
// SQLiteStore implements both in a single struct. Repository methods take an
// explicit context and operate on an explicit connection; there is no ambient
// global database handle.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The schema is created automatically on open. Use NewSQLiteStore(":memory:")
// for tests.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrUsernameExists: Username already taken at creation
//   - ErrUnknownOwner: Transaction owner references no user
//
// Mutations either fully apply or leave the database untouched: update runs
// its existence check and write inside one SQL transaction, and constraint
// violations are mapped to sentinel errors rather than surfaced raw.
package store
