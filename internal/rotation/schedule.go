// Package rotation contains the pure scheduling math for Susu groups:
// picking the next payout recipient, stamping cycle dates, and measuring
// cycle progress. It has no storage or service dependencies so the group
// engine can be tested against it directly.
package rotation

import (
	"fmt"
	"time"

	"github.com/savora-app/savora/internal/models"
)

// NextDate returns when the next cycle closes, given the cadence and the
// moment the current cycle starts.
func NextDate(freq models.Frequency, from time.Time) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return from.AddDate(0, 1, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown frequency %q", freq)
}

// NextRecipient picks the payout recipient for the next cycle: the member
// after the current recipient in join order, wrapping around. When no
// recipient has been designated yet the first member by position is chosen.
func NextRecipient(members []models.GroupMember, currentID string) (string, error) {
	if len(members) == 0 {
		return "", fmt.Errorf("group has no members")
	}

	// Members are kept in join order by the store, but don't rely on it.
	ordered := make([]models.GroupMember, len(members))
	copy(ordered, members)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Position < ordered[j-1].Position; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	if currentID == "" {
		return ordered[0].UserID, nil
	}
	for i, m := range ordered {
		if m.UserID == currentID {
			return ordered[(i+1)%len(ordered)].UserID, nil
		}
	}
	// Current recipient left the rotation; start over.
	return ordered[0].UserID, nil
}

// CycleProgress returns the percentage of members that have contributed in
// the current cycle, rounded down.
func CycleProgress(members []models.GroupMember) int {
	if len(members) == 0 {
		return 0
	}
	paid := 0
	for _, m := range members {
		if m.Status == models.MemberPaid {
			paid++
		}
	}
	return paid * 100 / len(members)
}
