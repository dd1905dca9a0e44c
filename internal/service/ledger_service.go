package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/storage"
)

// LedgerService owns the wallet pool operations: deposits, withdrawals and
// peer transfers. Every mutation validates its preconditions, runs as a
// single atomic unit against the store, and returns the updated user
// snapshot together with the appended transaction record.
type LedgerService struct {
	store storage.Store
	locks *AggregateLocks
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, locks *AggregateLocks) *LedgerService {
	return &LedgerService{store: store, locks: locks}
}

// Deposit tops up the user's wallet from a linked account.
func (s *LedgerService) Deposit(ctx context.Context, userID string, amount decimal.Decimal, source string) (*models.User, *models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, models.ErrInvalidAmount
	}

	defer s.locks.LockUser(userID)()

	description := "Wallet top up"
	if source != "" {
		description = fmt.Sprintf("Top up from %s", source)
	}

	txn, err := s.store.Deposit(ctx, userID, amount, description)
	if err != nil {
		slog.Warn("Deposit failed", "user_id", userID, "error", err)
		return nil, nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Deposit completed", "user_id", userID, "amount", amount.String(), "transaction_id", txn.ID)
	return user, txn, nil
}

// Withdraw moves money out of the wallet to a linked account.
func (s *LedgerService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, destination string) (*models.User, *models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, models.ErrInvalidAmount
	}

	defer s.locks.LockUser(userID)()

	description := "Wallet withdrawal"
	if destination != "" {
		description = fmt.Sprintf("Withdrawal to %s", destination)
	}

	txn, err := s.store.Withdraw(ctx, userID, amount, description)
	if err != nil {
		slog.Warn("Withdraw failed", "user_id", userID, "error", err)
		return nil, nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Withdrawal completed", "user_id", userID, "amount", amount.String(), "transaction_id", txn.ID)
	return user, txn, nil
}

// Transfer moves money from one user's wallet to another's. Both wallets
// change together or not at all.
func (s *LedgerService) Transfer(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal) (*models.User, *models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, models.ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return nil, nil, fmt.Errorf("cannot transfer to the same wallet: %w", models.ErrInvalidAmount)
	}

	defer s.locks.LockUsers(fromUserID, toUserID)()

	recipient, err := s.store.GetUserByID(ctx, toUserID)
	if err != nil {
		return nil, nil, err
	}

	txn, err := s.store.TransferWallet(ctx, fromUserID, toUserID, amount,
		fmt.Sprintf("Transfer to %s", recipient.Name))
	if err != nil {
		slog.Warn("Transfer failed", "from", fromUserID, "to", toUserID, "error", err)
		return nil, nil, err
	}

	sender, err := s.store.GetUserByID(ctx, fromUserID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Transfer completed",
		"from", fromUserID,
		"to", toUserID,
		"amount", amount.String(),
		"transaction_id", txn.ID,
	)
	return sender, txn, nil
}

// Transactions returns the user's ledger history, most recent first.
func (s *LedgerService) Transactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}
