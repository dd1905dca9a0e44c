// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
//
// Balances are stored as decimal strings and only ever rewritten inside a
// transaction that read them, so a relative change is never lost. Callers
// (the service layer) serialize operations per aggregate; the database
// transaction guarantees all-or-nothing application of each operation.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver. Pragmas go on the DSN so they
	// apply to every pooled connection: WAL lets readers proceed alongside
	// a writer, and the busy timeout makes a second writer wait instead of
	// failing with SQLITE_BUSY. Transactions take the write lock up front
	// (_txlock=immediate) so a read-then-write transaction never hits an
	// unretryable snapshot upgrade conflict.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// parseAmount converts a stored decimal string back to a decimal.
func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed stored amount %q: %w", raw, err)
	}
	return d, nil
}

// walletBalanceTx reads a user's wallet balance inside the given transaction.
func walletBalanceTx(ctx context.Context, tx *sql.Tx, userID string) (decimal.Decimal, error) {
	var raw string
	err := tx.QueryRowContext(ctx,
		"SELECT wallet_balance FROM users WHERE id = ?", userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, models.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read wallet balance: %w", err)
	}
	return parseAmount(raw)
}

// setWalletBalanceTx rewrites a user's wallet balance inside the given
// transaction. Must only be called with a balance derived from
// walletBalanceTx in the same transaction.
func setWalletBalanceTx(ctx context.Context, tx *sql.Tx, userID string, balance decimal.Decimal, now int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE users SET wallet_balance = ?, updated_at = ? WHERE id = ?",
		balance.String(), now, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	return nil
}

// insertTransactionTx appends an immutable ledger record.
func insertTransactionTx(ctx context.Context, tx *sql.Tx, txn *models.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, status, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, string(txn.Type), txn.Amount.String(),
		string(txn.Status), txn.Description, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}
