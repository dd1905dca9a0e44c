package models

import "github.com/shopspring/decimal"

// Frequency is the contribution cadence of a Susu group.
type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// Valid reports whether f is one of the known cadences.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// MemberStatus tracks a member's contribution state for the current cycle.
//
// pending -> paid    on contribution
// pending -> overdue on cycle close with no contribution
// paid/overdue reset to pending when the next cycle starts.
type MemberStatus string

const (
	MemberPaid    MemberStatus = "paid"
	MemberPending MemberStatus = "pending"
	MemberOverdue MemberStatus = "overdue"
)

// Group is a rotating-contribution (Susu) group. Members contribute a fixed
// amount per cycle; the accumulated pool is paid out to one member per cycle.
type Group struct {
	ID string

	Name string

	// ContributionAmount is the fixed per-cycle contribution (> 0).
	ContributionAmount decimal.Decimal

	Frequency Frequency

	// CreatorID is the group's sole administrator, immutable after creation.
	CreatorID string

	// PoolAmount is the sum of current-cycle contributions not yet paid out.
	// Reset to zero atomically with a successful payout approval.
	PoolAmount decimal.Decimal

	// NextPayoutMemberID designates the current cycle's payout recipient.
	NextPayoutMemberID string

	// NextPayoutDate is the Unix timestamp the current cycle closes.
	NextPayoutDate int64

	// Members in join order. The creator is always the first member.
	Members []GroupMember

	// PayoutRequests in creation order, resolved ones included.
	PayoutRequests []PayoutRequest

	// ChatHistory in insertion order.
	ChatHistory []ChatMessage

	CreatedAt int64
}

// Member returns the member with the given user id, or nil.
func (g *Group) Member(userID string) *GroupMember {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// PendingRequestBy reports whether the user already has a pending payout
// request in this group.
func (g *Group) PendingRequestBy(userID string) bool {
	for _, req := range g.PayoutRequests {
		if req.RequesterID == userID && req.Status == PayoutPending {
			return true
		}
	}
	return false
}

// GroupMember is one participant's state within a group.
type GroupMember struct {
	UserID      string
	Name        string
	Status      MemberStatus
	PaymentDate int64 // Unix timestamp of this cycle's contribution, 0 if none
	Position    int   // join order, drives the payout rotation
}

// PayoutStatus is the resolution state of a payout request.
//
// pending -> approved (terminal, money moves)
// pending -> rejected (terminal, no money moves)
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "pending"
	PayoutApproved PayoutStatus = "approved"
	PayoutRejected PayoutStatus = "rejected"
)

// PayoutRequest asks the group admin to release the pool to the requester.
// Amount is captured from the pool at request time and not re-evaluated at
// approval time.
type PayoutRequest struct {
	ID            string
	GroupID       string
	RequesterID   string
	RequesterName string
	Amount        decimal.Decimal
	Status        PayoutStatus
	CreatedAt     int64
}

// ChatMessage is an append-only group message with no money semantics.
type ChatMessage struct {
	ID         string
	GroupID    string
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  int64
}
