package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
)

// Deposit credits the wallet and appends a completed DEPOSIT record in one
// transaction.
func (s *SQLiteStore) Deposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	balance, err := walletBalanceTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := setWalletBalanceTx(ctx, tx, userID, balance.Add(amount), now); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        models.TransactionDeposit,
		Amount:      amount,
		Status:      models.StatusCompleted,
		Description: description,
		CreatedAt:   now,
	}
	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// Withdraw debits the wallet, failing without side effects when the balance
// cannot cover the amount.
func (s *SQLiteStore) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	balance, err := walletBalanceTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}
	if err := setWalletBalanceTx(ctx, tx, userID, balance.Sub(amount), now); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        models.TransactionWithdrawal,
		Amount:      amount,
		Status:      models.StatusCompleted,
		Description: description,
		CreatedAt:   now,
	}
	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// TransferWallet moves amount from one wallet to another, appending one
// TRANSFER record per side. Both legs commit or neither does.
func (s *SQLiteStore) TransferWallet(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	fromBalance, err := walletBalanceTx(ctx, tx, fromUserID)
	if err != nil {
		return nil, err
	}
	if fromBalance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}
	toBalance, err := walletBalanceTx(ctx, tx, toUserID)
	if err != nil {
		return nil, err
	}

	if err := setWalletBalanceTx(ctx, tx, fromUserID, fromBalance.Sub(amount), now); err != nil {
		return nil, err
	}
	if err := setWalletBalanceTx(ctx, tx, toUserID, toBalance.Add(amount), now); err != nil {
		return nil, err
	}

	outTxn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      fromUserID,
		Type:        models.TransactionTransfer,
		Amount:      amount,
		Status:      models.StatusCompleted,
		Description: description,
		CreatedAt:   now,
	}
	if err := insertTransactionTx(ctx, tx, outTxn); err != nil {
		return nil, err
	}

	inTxn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      toUserID,
		Type:        models.TransactionTransfer,
		Amount:      amount,
		Status:      models.StatusCompleted,
		Description: description,
		CreatedAt:   now,
	}
	if err := insertTransactionTx(ctx, tx, inTxn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return outTxn, nil
}

// ListTransactions returns the user's history, most recent first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, amount, status, description, created_at
		 FROM transactions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{UserID: userID}
		var txType, status, amount string
		if err := rows.Scan(&txn.ID, &txType, &amount, &status, &txn.Description, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = models.TransactionType(txType)
		txn.Status = models.TransactionStatus(status)
		if txn.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}
