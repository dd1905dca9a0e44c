package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingGoal is a user-defined, ring-fenced savings target funded from the
// wallet pool. CurrentAmount is monotonically non-decreasing: funds move in
// through FundGoal and there is no withdrawal path back to the wallet.
type SavingGoal struct {
	ID            string
	UserID        string
	Name          string
	TargetAmount  decimal.Decimal // > 0
	CurrentAmount decimal.Decimal // >= 0, contributes 1:1 to the user's SavingsBalance
	Deadline      int64           // Unix timestamp
	Icon          string          // display metadata, e.g. an emoji
	Color         string
	CreatedAt     int64
}

// NewSavingGoal creates an unfunded goal.
func NewSavingGoal(userID, name string, target decimal.Decimal, deadline time.Time, icon, color string) *SavingGoal {
	return &SavingGoal{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Deadline:      deadline.Unix(),
		Icon:          icon,
		Color:         color,
		CreatedAt:     time.Now().Unix(),
	}
}

// Remaining returns how much is still needed to reach the target.
func (g *SavingGoal) Remaining() decimal.Decimal {
	rem := g.TargetAmount.Sub(g.CurrentAmount)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}
