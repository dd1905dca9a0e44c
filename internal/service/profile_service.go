package service

import (
	"context"
	"log/slog"

	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/storage"
)

// ProfileService manages the non-money parts of a user's account: linked
// payment rails and notifications.
type ProfileService struct {
	store storage.Store
	locks *AggregateLocks
}

// NewProfileService creates a ProfileService with the given storage backend.
func NewProfileService(store storage.Store, locks *AggregateLocks) *ProfileService {
	return &ProfileService{store: store, locks: locks}
}

// User returns the user snapshot with pools and linked accounts.
func (s *ProfileService) User(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// LinkAccount attaches an external payment rail. The first account becomes
// primary.
func (s *ProfileService) LinkAccount(ctx context.Context, userID string, accountType models.AccountType, provider, number, name string) (*models.User, error) {
	defer s.locks.LockUser(userID)()

	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	account := &models.LinkedAccount{
		Type:          accountType,
		Provider:      provider,
		AccountNumber: number,
		AccountName:   name,
	}
	if err := s.store.LinkAccount(ctx, userID, account); err != nil {
		slog.Error("LinkAccount failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Account linked", "user_id", userID, "account_id", account.ID, "provider", provider)
	return s.store.GetUserByID(ctx, userID)
}

// SetPrimaryAccount makes the given account the single primary one.
func (s *ProfileService) SetPrimaryAccount(ctx context.Context, userID, accountID string) (*models.User, error) {
	defer s.locks.LockUser(userID)()

	if err := s.store.SetPrimaryAccount(ctx, userID, accountID); err != nil {
		slog.Warn("SetPrimaryAccount failed", "user_id", userID, "account_id", accountID, "error", err)
		return nil, err
	}

	slog.Info("Primary account changed", "user_id", userID, "account_id", accountID)
	return s.store.GetUserByID(ctx, userID)
}

// Notifications returns the user's notifications, most recent first.
func (s *ProfileService) Notifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.store.ListNotifications(ctx, userID)
}

// MarkNotificationRead flags one notification as read.
func (s *ProfileService) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkNotificationRead(ctx, userID, notificationID)
}
