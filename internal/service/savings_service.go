package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/storage"
)

// SavingsService manages ring-fenced savings goals. Goals are funded from
// the wallet pool through the ledger's transfer primitive; there is no path
// from a goal back to the wallet.
type SavingsService struct {
	store storage.Store
	locks *AggregateLocks
}

// NewSavingsService creates a SavingsService with the given storage backend.
func NewSavingsService(store storage.Store, locks *AggregateLocks) *SavingsService {
	return &SavingsService{store: store, locks: locks}
}

// CreateGoal creates an unfunded goal for the user.
func (s *SavingsService) CreateGoal(ctx context.Context, userID, name string, target decimal.Decimal, deadline time.Time, icon, color string) (*models.SavingGoal, error) {
	if !target.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	goal := models.NewSavingGoal(userID, name, target, deadline, icon, color)
	if err := s.store.CreateGoal(ctx, goal); err != nil {
		slog.Error("CreateGoal failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Goal created", "user_id", userID, "goal_id", goal.ID, "target", target.String())
	return goal, nil
}

// FundGoal transfers amount from the user's wallet into the goal. The wallet
// debit and the goal credit are atomic: an overdraw leaves both unchanged.
func (s *SavingsService) FundGoal(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*models.User, *models.SavingGoal, *models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, nil, models.ErrInvalidAmount
	}

	defer s.locks.LockUser(userID)()

	txn, err := s.store.FundGoal(ctx, userID, goalID, amount)
	if err != nil {
		slog.Warn("FundGoal failed", "user_id", userID, "goal_id", goalID, "error", err)
		return nil, nil, nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	goal, err := s.store.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, nil, nil, err
	}

	slog.Info("Goal funded",
		"user_id", userID,
		"goal_id", goalID,
		"amount", amount.String(),
		"transaction_id", txn.ID,
	)
	return user, goal, txn, nil
}

// Goals returns the user's goals in creation order.
func (s *SavingsService) Goals(ctx context.Context, userID string) ([]*models.SavingGoal, error) {
	return s.store.ListGoals(ctx, userID)
}
