package models

import "github.com/shopspring/decimal"

// TransactionType is the kind of ledger movement a transaction records.
type TransactionType string

const (
	TransactionDeposit      TransactionType = "DEPOSIT"
	TransactionWithdrawal   TransactionType = "WITHDRAWAL"
	TransactionTransfer     TransactionType = "TRANSFER"
	TransactionContribution TransactionType = "CONTRIBUTION"
	TransactionPayout       TransactionType = "PAYOUT"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger record. The history is append-only per
// user; insertion order is authoritative (most recent first for display).
type Transaction struct {
	ID          string
	UserID      string
	Type        TransactionType
	Amount      decimal.Decimal // always > 0; direction is carried by Type and Description
	Status      TransactionStatus
	Description string
	CreatedAt   int64
}
