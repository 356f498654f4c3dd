// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/transaction persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists (skip for in-memory databases)
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

		CREATE TABLE IF NOT EXISTS transactions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			description  TEXT NOT NULL,
			date         TEXT NOT NULL,
			owner        INTEGER NOT NULL REFERENCES users(id),
			participants TEXT NOT NULL,
			price        INTEGER NOT NULL,
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions(owner);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// CreateUser creates a new user and assigns its id.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	user.ID = id

	s.logger.Info("user created", "user_id", id, "username", user.Username)
	return nil
}

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// CreateTransaction inserts a new transaction and assigns its id.
// The owner must reference an existing user.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *Transaction) error {
	now := time.Now()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (description, date, owner, participants, price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.Description,
		txn.Date,
		txn.Owner,
		txn.Participants,
		txn.Price,
		now.UTC().Format(time.RFC3339),
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrUnknownOwner
		}
		return fmt.Errorf("creating transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading transaction id: %w", err)
	}
	txn.ID = id

	return nil
}

// GetTransaction retrieves a transaction by id.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, description, date, owner, participants, price, created_at, updated_at
		 FROM transactions WHERE id = ?`, id)

	var t Transaction
	var createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.Description, &t.Date, &t.Owner, &t.Participants, &t.Price, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning transaction: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &t, nil
}

// ListTransactions returns all transactions ordered by id.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]*Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, date, owner, participants, price, created_at, updated_at
		 FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []*Transaction
	for rows.Next() {
		var t Transaction
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.Description, &t.Date, &t.Owner, &t.Participants, &t.Price, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		txns = append(txns, &t)
	}

	return txns, rows.Err()
}

// UpdateTransaction replaces all mutable fields of a transaction.
// The existence check and the mutation run in one database transaction,
// so a concurrent writer never observes a partial update.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id int64, fields TransactionFields) (*Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var createdAt string
	err = tx.QueryRowContext(ctx,
		`SELECT created_at FROM transactions WHERE id = ?`, id).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking transaction: %w", err)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, date = ?, owner = ?, participants = ?, price = ?, updated_at = ?
		 WHERE id = ?`,
		fields.Description,
		fields.Date,
		fields.Owner,
		fields.Participants,
		fields.Price,
		now.UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return nil, ErrUnknownOwner
		}
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	created, _ := time.Parse(time.RFC3339, createdAt)
	return &Transaction{
		ID:           id,
		Description:  fields.Description,
		Date:         fields.Date,
		Owner:        fields.Owner,
		Participants: fields.Participants,
		Price:        fields.Price,
		CreatedAt:    created,
		UpdatedAt:    now,
	}, nil
}

// DeleteTransaction removes a transaction by id.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	// SQLite returns "UNIQUE constraint failed" in the error message
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "unique constraint"))
}

// isForeignKeyError checks if an error is a foreign key constraint violation.
func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
