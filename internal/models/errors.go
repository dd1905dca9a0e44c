package models

import "errors"

// Sentinel errors returned by the ledger and group services. Every rejected
// operation surfaces one of these and leaves all state unchanged, so callers
// can render a specific message instead of a generic failure.
var (
	// ErrInvalidAmount is returned for a non-positive or malformed amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientFunds is returned when the source pool cannot cover
	// the requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotAMember is returned when the acting user does not belong to
	// the group.
	ErrNotAMember = errors.New("user is not a member of this group")

	// ErrNotAuthorized is returned when a group operation is restricted to
	// the group's creator.
	ErrNotAuthorized = errors.New("only the group admin may perform this action")

	// ErrDuplicateRequest is returned when a member already has a pending
	// payout request in the group.
	ErrDuplicateRequest = errors.New("a pending payout request already exists")

	// ErrRequestNotFound is returned when a payout request is absent or
	// already resolved.
	ErrRequestNotFound = errors.New("payout request not found or already resolved")

	// ErrGoalNotFound is returned when a goal id is unknown to the user.
	ErrGoalNotFound = errors.New("saving goal not found")

	// ErrAmountMismatch is returned when a contribution does not equal the
	// group's fixed contribution amount.
	ErrAmountMismatch = errors.New("contribution must equal the group contribution amount")

	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidFrequency = errors.New("frequency must be Daily, Weekly or Monthly")
	ErrGroupNotFound    = errors.New("group not found")
	ErrDuplicateMember  = errors.New("user is already a member of this group")
	ErrAccountNotFound  = errors.New("linked account not found")
)
