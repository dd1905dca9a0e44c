package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
)

// CreateGoal persists a new saving goal.
func (s *SQLiteStore) CreateGoal(ctx context.Context, goal *models.SavingGoal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	if goal.CreatedAt == 0 {
		goal.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saving_goals (id, user_id, name, target_amount, current_amount, deadline, icon, color, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount.String(),
		goal.CurrentAmount.String(), goal.Deadline, goal.Icon, goal.Color, goal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	return nil
}

func scanGoal(scan func(dest ...any) error) (*models.SavingGoal, error) {
	goal := &models.SavingGoal{}
	var target, current string
	err := scan(&goal.ID, &goal.UserID, &goal.Name, &target, &current,
		&goal.Deadline, &goal.Icon, &goal.Color, &goal.CreatedAt)
	if err != nil {
		return nil, err
	}
	if goal.TargetAmount, err = parseAmount(target); err != nil {
		return nil, err
	}
	if goal.CurrentAmount, err = parseAmount(current); err != nil {
		return nil, err
	}
	return goal, nil
}

const goalColumns = "id, user_id, name, target_amount, current_amount, deadline, icon, color, created_at"

// GetGoal retrieves one of the user's goals.
func (s *SQLiteStore) GetGoal(ctx context.Context, userID, goalID string) (*models.SavingGoal, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM saving_goals WHERE id = ? AND user_id = ?",
		goalID, userID,
	)

	goal, err := scanGoal(row.Scan)
	if err == sql.ErrNoRows {
		return nil, models.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return goal, nil
}

// ListGoals returns all of the user's goals in creation order.
func (s *SQLiteStore) ListGoals(ctx context.Context, userID string) ([]*models.SavingGoal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM saving_goals WHERE user_id = ? ORDER BY created_at, rowid",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.SavingGoal
	for rows.Next() {
		goal, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	return goals, nil
}

// FundGoal moves amount from the wallet pool into the goal. The wallet
// debit, the goal credit, the denormalized savings balance and the TRANSFER
// record all commit together; an overdraw leaves every pool untouched.
func (s *SQLiteStore) FundGoal(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	var name, current, savings string
	err = tx.QueryRowContext(ctx,
		"SELECT name, current_amount FROM saving_goals WHERE id = ? AND user_id = ?",
		goalID, userID,
	).Scan(&name, &current)
	if err == sql.ErrNoRows {
		return nil, models.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read goal: %w", err)
	}
	currentAmount, err := parseAmount(current)
	if err != nil {
		return nil, err
	}

	balance, err := walletBalanceTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}

	err = tx.QueryRowContext(ctx,
		"SELECT savings_balance FROM users WHERE id = ?", userID,
	).Scan(&savings)
	if err != nil {
		return nil, fmt.Errorf("failed to read savings balance: %w", err)
	}
	savingsBalance, err := parseAmount(savings)
	if err != nil {
		return nil, err
	}

	if err := setWalletBalanceTx(ctx, tx, userID, balance.Sub(amount), now); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE users SET savings_balance = ? WHERE id = ?",
		savingsBalance.Add(amount).String(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update savings balance: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE saving_goals SET current_amount = ? WHERE id = ?",
		currentAmount.Add(amount).String(), goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal amount: %w", err)
	}

	txn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        models.TransactionTransfer,
		Amount:      amount,
		Status:      models.StatusCompleted,
		Description: fmt.Sprintf("Transfer to goal: %s", name),
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
