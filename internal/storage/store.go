// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
)

// UserStore persists users, their linked accounts and notifications.
type UserStore interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email.
	// Returns (nil, nil) if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user with pools and linked accounts loaded.
	// Returns models.ErrUserNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// LinkAccount attaches an external payment rail to the user. The first
	// linked account becomes primary.
	LinkAccount(ctx context.Context, userID string, account *models.LinkedAccount) error

	// SetPrimaryAccount makes the given account the user's single primary
	// account, clearing any other primary flag in the same transaction.
	SetPrimaryAccount(ctx context.Context, userID, accountID string) error

	AppendNotification(ctx context.Context, userID string, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

// LedgerStore executes the wallet money movements. Every method is atomic:
// balance changes and the appended transaction records either all commit or
// none do. Balance checks happen inside the same transaction that applies
// the debit, so a failed operation never leaves a partial effect.
type LedgerStore interface {
	// Deposit credits the wallet and appends a completed DEPOSIT record.
	Deposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (*models.Transaction, error)

	// Withdraw debits the wallet, failing with models.ErrInsufficientFunds
	// if the balance cannot cover the amount.
	Withdraw(ctx context.Context, userID string, amount decimal.Decimal, description string) (*models.Transaction, error)

	// TransferWallet moves amount between two users' wallets, appending one
	// TRANSFER record per side. Returns the sender-side record.
	TransferWallet(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, description string) (*models.Transaction, error)

	// ListTransactions returns the user's history, most recent first.
	ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)
}

// GoalStore persists saving goals and the wallet-to-goal funding leg.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *models.SavingGoal) error

	// GetGoal returns models.ErrGoalNotFound if the goal does not belong
	// to the user.
	GetGoal(ctx context.Context, userID, goalID string) (*models.SavingGoal, error)

	ListGoals(ctx context.Context, userID string) ([]*models.SavingGoal, error)

	// FundGoal atomically debits the wallet, credits the goal and the
	// denormalized savings balance, and appends a TRANSFER record.
	FundGoal(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*models.Transaction, error)
}

// GroupStore persists Susu groups and their money-bearing operations.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup loads the group with members, payout requests and chat
	// history. Returns models.ErrGroupNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddMember appends a member in join order with pending status.
	AddMember(ctx context.Context, groupID string, member *models.GroupMember) error

	// RecordContribution atomically debits the member's wallet, marks the
	// member paid with a payment date, grows the pool, and appends a
	// CONTRIBUTION record to the member's history.
	RecordContribution(ctx context.Context, groupID, memberID string, amount decimal.Decimal) (*models.Transaction, error)

	// CloseCycle resets member statuses for the next cycle (unpaid members
	// are recorded overdue before the reset) and stamps the next payout
	// recipient and cycle close date.
	CloseCycle(ctx context.Context, groupID, nextRecipientID string, nextPayoutDate int64) error

	CreatePayoutRequest(ctx context.Context, req *models.PayoutRequest) error

	// ApprovePayout atomically credits the requester's wallet with the
	// request amount, appends a PAYOUT record, marks the request approved
	// and resets the pool to zero. Returns models.ErrRequestNotFound if
	// the request is absent or not pending, and models.ErrInsufficientFunds
	// if the pool no longer covers the amount captured at request time.
	ApprovePayout(ctx context.Context, groupID, requestID string) (*models.Transaction, error)

	// RejectPayout marks a pending request rejected without moving money.
	RejectPayout(ctx context.Context, groupID, requestID string) error

	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessages(ctx context.Context, groupID string) ([]*models.ChatMessage, error)
}

// Store is the full persistence surface. The abstraction allows swapping
// storage backends (SQLite, PostgreSQL, etc.) without changing the service
// layer.
type Store interface {
	UserStore
	LedgerStore
	GoalStore
	GroupStore

	// Close releases any resources held by the store.
	Close() error
}
