package rotation

import (
	"testing"
	"time"

	"github.com/savora-app/savora/internal/models"
)

func TestNextDate(t *testing.T) {
	from := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		freq    models.Frequency
		want    time.Time
		wantErr bool
	}{
		{name: "daily", freq: models.FrequencyDaily, want: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)},
		{name: "weekly", freq: models.FrequencyWeekly, want: time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)},
		{name: "monthly", freq: models.FrequencyMonthly, want: time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)},
		{name: "unknown", freq: models.Frequency("Fortnightly"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDate(tt.freq, from)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NextDate failed: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextRecipient(t *testing.T) {
	members := []models.GroupMember{
		{UserID: "u3", Position: 2},
		{UserID: "u1", Position: 0},
		{UserID: "u2", Position: 1},
	}

	tests := []struct {
		name      string
		currentID string
		want      string
	}{
		{name: "no current recipient picks first by position", currentID: "", want: "u1"},
		{name: "advances in join order", currentID: "u1", want: "u2"},
		{name: "wraps around", currentID: "u3", want: "u1"},
		{name: "unknown current restarts rotation", currentID: "gone", want: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRecipient(members, tt.currentID)
			if err != nil {
				t.Fatalf("NextRecipient failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("NextRecipient = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("empty group errors", func(t *testing.T) {
		if _, err := NextRecipient(nil, ""); err == nil {
			t.Error("expected error for empty member list")
		}
	})
}

func TestCycleProgress(t *testing.T) {
	members := []models.GroupMember{
		{UserID: "a", Status: models.MemberPaid},
		{UserID: "b", Status: models.MemberPending},
		{UserID: "c", Status: models.MemberPaid},
		{UserID: "d", Status: models.MemberOverdue},
	}

	if got := CycleProgress(members); got != 50 {
		t.Errorf("CycleProgress = %d, want 50", got)
	}
	if got := CycleProgress(nil); got != 0 {
		t.Errorf("CycleProgress(nil) = %d, want 0", got)
	}
}
