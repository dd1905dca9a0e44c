package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a registered account with its money pools.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique). Used for login.
	Email string

	// Phone is the user's mobile number, used for mobile-money rails.
	Phone string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to clients.
	PasswordHash string

	// Avatar is a short display string (initials or image URL).
	Avatar string

	// ReferralCode is generated once at signup.
	ReferralCode string

	// WalletBalance is the spendable pool.
	WalletBalance decimal.Decimal

	// SavingsBalance is the aggregate of all goal balances. It is stored
	// denormalized but must always equal the sum of the user's
	// SavingGoal.CurrentAmount values.
	SavingsBalance decimal.Decimal

	// LinkedAccounts are the user's external payment rails. When the set
	// is non-empty exactly one account has IsPrimary set.
	LinkedAccounts []LinkedAccount

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with zero balances, ready for its first deposit.
func NewUser(name, email, phone, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		Phone:          phone,
		PasswordHash:   passwordHash,
		WalletBalance:  decimal.Zero,
		SavingsBalance: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AccountType distinguishes mobile-money wallets from bank accounts.
type AccountType string

const (
	AccountMobileMoney AccountType = "MOMO"
	AccountBank        AccountType = "BANK"
)

// LinkedAccount is an external payment rail. The core treats it as opaque
// beyond the primary flag.
type LinkedAccount struct {
	ID            string
	Type          AccountType
	Provider      string // e.g. "MTN Mobile Money", "Ecobank"
	AccountNumber string
	AccountName   string
	IsPrimary     bool
}

// NotificationType classifies a notification for display purposes.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// Notification is a passive per-user message. Not money-bearing.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	CreatedAt int64
}
