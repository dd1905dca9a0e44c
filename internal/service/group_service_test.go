package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/storage"
	"github.com/savora-app/savora/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "savora-service-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createFundedUser(t *testing.T, store storage.Store, name, email, balance string) *models.User {
	t.Helper()

	ctx := context.Background()
	user := models.NewUser(name, email, "+233200000000", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if balance != "0" {
		if _, err := store.Deposit(ctx, user.ID, dec(balance), "Top up"); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}
	}
	return user
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGroupService(t *testing.T) {
	store := newTestStore(t)
	svc := NewGroupService(store, NewAggregateLocks())
	ctx := context.Background()

	t.Run("CreateGroup seeds creator as first member and recipient", func(t *testing.T) {
		creator := createFundedUser(t, store, "Ama Mensah", "ama-create@example.com", "0")

		group, err := svc.CreateGroup(ctx, creator.ID, "Market Women Susu", dec("200"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		if group.CreatorID != creator.ID {
			t.Errorf("CreatorID: got %s, want %s", group.CreatorID, creator.ID)
		}
		if len(group.Members) != 1 || group.Members[0].UserID != creator.ID {
			t.Fatalf("Expected creator as sole member, got %+v", group.Members)
		}
		if group.Members[0].Status != models.MemberPending {
			t.Errorf("Creator status: got %s, want pending", group.Members[0].Status)
		}
		if group.NextPayoutMemberID != creator.ID {
			t.Errorf("NextPayoutMemberID: got %s, want creator", group.NextPayoutMemberID)
		}
		if group.NextPayoutDate == 0 {
			t.Error("Expected NextPayoutDate to be stamped")
		}
		if !group.PoolAmount.IsZero() {
			t.Errorf("PoolAmount: got %s, want 0", group.PoolAmount)
		}
	})

	t.Run("CreateGroup rejects bad input", func(t *testing.T) {
		creator := createFundedUser(t, store, "Kofi Asante", "kofi-create@example.com", "0")

		if _, err := svc.CreateGroup(ctx, creator.ID, "Bad", dec("0"), models.FrequencyWeekly); !errors.Is(err, models.ErrInvalidAmount) {
			t.Errorf("Zero contribution: expected ErrInvalidAmount, got %v", err)
		}
		if _, err := svc.CreateGroup(ctx, creator.ID, "Bad", dec("-5"), models.FrequencyWeekly); !errors.Is(err, models.ErrInvalidAmount) {
			t.Errorf("Negative contribution: expected ErrInvalidAmount, got %v", err)
		}
		if _, err := svc.CreateGroup(ctx, creator.ID, "Bad", dec("100"), models.Frequency("Fortnightly")); !errors.Is(err, models.ErrInvalidFrequency) {
			t.Errorf("Bad frequency: expected ErrInvalidFrequency, got %v", err)
		}
	})

	t.Run("JoinGroup rejects duplicate membership", func(t *testing.T) {
		creator := createFundedUser(t, store, "Esi Owusu", "esi-join@example.com", "0")
		member := createFundedUser(t, store, "Yaw Boateng", "yaw-join@example.com", "0")

		group, err := svc.CreateGroup(ctx, creator.ID, "Family Circle", dec("100"), models.FrequencyMonthly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		if _, err := svc.JoinGroup(ctx, group.ID, member.ID); err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}
		if _, err := svc.JoinGroup(ctx, group.ID, member.ID); !errors.Is(err, models.ErrDuplicateMember) {
			t.Errorf("Expected ErrDuplicateMember, got %v", err)
		}
		if _, err := svc.JoinGroup(ctx, group.ID, creator.ID); !errors.Is(err, models.ErrDuplicateMember) {
			t.Errorf("Creator rejoin: expected ErrDuplicateMember, got %v", err)
		}
	})

	t.Run("Contribute enforces the fixed amount", func(t *testing.T) {
		creator := createFundedUser(t, store, "Akua Darko", "akua-amount@example.com", "1000")

		group, err := svc.CreateGroup(ctx, creator.ID, "Weekly 200", dec("200"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		if _, _, err := svc.Contribute(ctx, group.ID, creator.ID, dec("150")); !errors.Is(err, models.ErrAmountMismatch) {
			t.Errorf("Underpayment: expected ErrAmountMismatch, got %v", err)
		}
		if _, _, err := svc.Contribute(ctx, group.ID, creator.ID, dec("250")); !errors.Is(err, models.ErrAmountMismatch) {
			t.Errorf("Overpayment: expected ErrAmountMismatch, got %v", err)
		}

		// The wallet must be untouched after the rejected attempts.
		u, _ := store.GetUserByID(ctx, creator.ID)
		if !u.WalletBalance.Equal(dec("1000")) {
			t.Errorf("Wallet changed by rejected contribution: %s", u.WalletBalance)
		}

		updated, _, err := svc.Contribute(ctx, group.ID, creator.ID, dec("200"))
		if err != nil {
			t.Fatalf("Contribute failed: %v", err)
		}
		if !updated.PoolAmount.Equal(dec("200")) {
			t.Errorf("PoolAmount: got %s, want 200", updated.PoolAmount)
		}
	})

	t.Run("Contribute rejects non-members", func(t *testing.T) {
		creator := createFundedUser(t, store, "Abena Frimpong", "abena-member@example.com", "500")
		outsider := createFundedUser(t, store, "Kwame Addo", "kwame-member@example.com", "500")

		group, err := svc.CreateGroup(ctx, creator.ID, "Closed Circle", dec("100"), models.FrequencyDaily)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		if _, _, err := svc.Contribute(ctx, group.ID, outsider.ID, dec("100")); !errors.Is(err, models.ErrNotAMember) {
			t.Errorf("Expected ErrNotAMember, got %v", err)
		}
	})

	t.Run("AdvanceCycle is admin only", func(t *testing.T) {
		creator := createFundedUser(t, store, "Adwoa Sarpong", "adwoa-admin@example.com", "0")
		member := createFundedUser(t, store, "Kojo Antwi", "kojo-admin@example.com", "0")

		group, err := svc.CreateGroup(ctx, creator.ID, "Admin Test", dec("100"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if _, err := svc.JoinGroup(ctx, group.ID, member.ID); err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}

		if _, err := svc.AdvanceCycle(ctx, group.ID, member.ID); !errors.Is(err, models.ErrNotAuthorized) {
			t.Errorf("Expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("AdvanceCycle rotates recipient and flags unpaid members", func(t *testing.T) {
		creator := createFundedUser(t, store, "Ama Mensah", "ama-rotate@example.com", "1000")
		second := createFundedUser(t, store, "Kofi Asante", "kofi-rotate@example.com", "1000")
		third := createFundedUser(t, store, "Esi Owusu", "esi-rotate@example.com", "1000")

		group, err := svc.CreateGroup(ctx, creator.ID, "Rotation Test", dec("100"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		for _, u := range []*models.User{second, third} {
			if _, err := svc.JoinGroup(ctx, group.ID, u.ID); err != nil {
				t.Fatalf("JoinGroup failed: %v", err)
			}
		}

		// Creator and second pay; third does not.
		for _, u := range []*models.User{creator, second} {
			if _, _, err := svc.Contribute(ctx, group.ID, u.ID, dec("100")); err != nil {
				t.Fatalf("Contribute failed: %v", err)
			}
		}

		updated, err := svc.AdvanceCycle(ctx, group.ID, creator.ID)
		if err != nil {
			t.Fatalf("AdvanceCycle failed: %v", err)
		}

		if updated.NextPayoutMemberID != second.ID {
			t.Errorf("Recipient should rotate to second member, got %s", updated.NextPayoutMemberID)
		}
		if updated.Member(creator.ID).Status != models.MemberPending {
			t.Errorf("Paid member: got %s, want pending", updated.Member(creator.ID).Status)
		}
		if updated.Member(third.ID).Status != models.MemberOverdue {
			t.Errorf("Unpaid member: got %s, want overdue", updated.Member(third.ID).Status)
		}

		// The unpaid member gets a warning notification.
		notifications, err := store.ListNotifications(ctx, third.ID)
		if err != nil {
			t.Fatalf("ListNotifications failed: %v", err)
		}
		found := false
		for _, n := range notifications {
			if n.Type == models.NotificationWarning {
				found = true
			}
		}
		if !found {
			t.Error("Expected a warning notification for the overdue member")
		}

		// Advancing again wraps the rotation toward the third member.
		updated, err = svc.AdvanceCycle(ctx, group.ID, creator.ID)
		if err != nil {
			t.Fatalf("Second AdvanceCycle failed: %v", err)
		}
		if updated.NextPayoutMemberID != third.ID {
			t.Errorf("Recipient should rotate to third member, got %s", updated.NextPayoutMemberID)
		}
	})

	t.Run("RequestPayout fixes the amount at request time", func(t *testing.T) {
		creator := createFundedUser(t, store, "Yaw Boateng", "yaw-fixed@example.com", "1000")
		member := createFundedUser(t, store, "Akua Darko", "akua-fixed@example.com", "1000")

		group, err := svc.CreateGroup(ctx, creator.ID, "Fixed Amount", dec("200"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if _, err := svc.JoinGroup(ctx, group.ID, member.ID); err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}

		if _, _, err := svc.Contribute(ctx, group.ID, creator.ID, dec("200")); err != nil {
			t.Fatalf("Contribute failed: %v", err)
		}

		// Pool is 200 at request time.
		req, err := svc.RequestPayout(ctx, group.ID, member.ID)
		if err != nil {
			t.Fatalf("RequestPayout failed: %v", err)
		}
		if !req.Amount.Equal(dec("200")) {
			t.Errorf("Request amount: got %s, want 200", req.Amount)
		}

		// A later contribution grows the pool but not the filed request.
		if _, _, err := svc.Contribute(ctx, group.ID, member.ID, dec("200")); err != nil {
			t.Fatalf("Contribute failed: %v", err)
		}

		updated, txn, err := svc.ApprovePayout(ctx, group.ID, creator.ID, req.ID)
		if err != nil {
			t.Fatalf("ApprovePayout failed: %v", err)
		}
		if !txn.Amount.Equal(dec("200")) {
			t.Errorf("Payout amount: got %s, want the request-time 200", txn.Amount)
		}
		if !updated.PoolAmount.IsZero() {
			t.Errorf("Pool after payout: got %s, want 0", updated.PoolAmount)
		}

		// 1000 - 200 contribution + 200 payout
		u, _ := store.GetUserByID(ctx, member.ID)
		if !u.WalletBalance.Equal(dec("1000")) {
			t.Errorf("Requester balance: got %s, want 1000", u.WalletBalance)
		}
	})

	t.Run("Competing payout requests cannot drain the pool twice", func(t *testing.T) {
		creator := createFundedUser(t, store, "Ama Mensah", "ama-compete@example.com", "1000")
		member := createFundedUser(t, store, "Kofi Asante", "kofi-compete@example.com", "1000")

		group, err := svc.CreateGroup(ctx, creator.ID, "Contested Pool", dec("200"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if _, err := svc.JoinGroup(ctx, group.ID, member.ID); err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}
		if _, _, err := svc.Contribute(ctx, group.ID, creator.ID, dec("200")); err != nil {
			t.Fatalf("Contribute failed: %v", err)
		}

		// Both members file against the same 200 pool.
		creatorReq, err := svc.RequestPayout(ctx, group.ID, creator.ID)
		if err != nil {
			t.Fatalf("RequestPayout failed: %v", err)
		}
		memberReq, err := svc.RequestPayout(ctx, group.ID, member.ID)
		if err != nil {
			t.Fatalf("RequestPayout failed: %v", err)
		}

		if _, _, err := svc.ApprovePayout(ctx, group.ID, creator.ID, creatorReq.ID); err != nil {
			t.Fatalf("First ApprovePayout failed: %v", err)
		}
		if _, _, err := svc.ApprovePayout(ctx, group.ID, creator.ID, memberReq.ID); !errors.Is(err, models.ErrInsufficientFunds) {
			t.Fatalf("Expected ErrInsufficientFunds on the second approval, got %v", err)
		}

		// 2000 went in; 2000 must still be there.
		c, _ := store.GetUserByID(ctx, creator.ID)
		m, _ := store.GetUserByID(ctx, member.ID)
		g, _ := store.GetGroup(ctx, group.ID)
		total := c.WalletBalance.Add(m.WalletBalance).Add(g.PoolAmount)
		if !total.Equal(dec("2000")) {
			t.Errorf("Total money: got %s, want 2000", total)
		}
	})

	t.Run("RequestPayout rejects a second pending request", func(t *testing.T) {
		creator := createFundedUser(t, store, "Abena Frimpong", "abena-dup@example.com", "1000")

		group, err := svc.CreateGroup(ctx, creator.ID, "Dup Request", dec("100"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if _, _, err := svc.Contribute(ctx, group.ID, creator.ID, dec("100")); err != nil {
			t.Fatalf("Contribute failed: %v", err)
		}

		if _, err := svc.RequestPayout(ctx, group.ID, creator.ID); err != nil {
			t.Fatalf("RequestPayout failed: %v", err)
		}
		if _, err := svc.RequestPayout(ctx, group.ID, creator.ID); !errors.Is(err, models.ErrDuplicateRequest) {
			t.Errorf("Expected ErrDuplicateRequest, got %v", err)
		}
	})

	t.Run("Payout approval and rejection are admin only", func(t *testing.T) {
		creator := createFundedUser(t, store, "Kwame Addo", "kwame-authz@example.com", "1000")
		member := createFundedUser(t, store, "Adwoa Sarpong", "adwoa-authz@example.com", "1000")

		group, err := svc.CreateGroup(ctx, creator.ID, "Authz Test", dec("100"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if _, err := svc.JoinGroup(ctx, group.ID, member.ID); err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}
		if _, _, err := svc.Contribute(ctx, group.ID, creator.ID, dec("100")); err != nil {
			t.Fatalf("Contribute failed: %v", err)
		}

		req, err := svc.RequestPayout(ctx, group.ID, member.ID)
		if err != nil {
			t.Fatalf("RequestPayout failed: %v", err)
		}

		if _, _, err := svc.ApprovePayout(ctx, group.ID, member.ID, req.ID); !errors.Is(err, models.ErrNotAuthorized) {
			t.Errorf("Approve by non-admin: expected ErrNotAuthorized, got %v", err)
		}
		if _, err := svc.RejectPayout(ctx, group.ID, member.ID, req.ID); !errors.Is(err, models.ErrNotAuthorized) {
			t.Errorf("Reject by non-admin: expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("RejectPayout resolves the request without moving money", func(t *testing.T) {
		creator := createFundedUser(t, store, "Kojo Antwi", "kojo-reject@example.com", "1000")
		member := createFundedUser(t, store, "Ama Mensah", "ama-reject@example.com", "1000")

		group, err := svc.CreateGroup(ctx, creator.ID, "Reject Test", dec("100"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if _, err := svc.JoinGroup(ctx, group.ID, member.ID); err != nil {
			t.Fatalf("JoinGroup failed: %v", err)
		}
		if _, _, err := svc.Contribute(ctx, group.ID, member.ID, dec("100")); err != nil {
			t.Fatalf("Contribute failed: %v", err)
		}

		req, err := svc.RequestPayout(ctx, group.ID, member.ID)
		if err != nil {
			t.Fatalf("RequestPayout failed: %v", err)
		}

		updated, err := svc.RejectPayout(ctx, group.ID, creator.ID, req.ID)
		if err != nil {
			t.Fatalf("RejectPayout failed: %v", err)
		}
		if !updated.PoolAmount.Equal(dec("100")) {
			t.Errorf("Pool should be untouched, got %s", updated.PoolAmount)
		}

		u, _ := store.GetUserByID(ctx, member.ID)
		if !u.WalletBalance.Equal(dec("900")) {
			t.Errorf("Requester balance should be untouched, got %s", u.WalletBalance)
		}

		// After rejection the member may file a fresh request.
		if _, err := svc.RequestPayout(ctx, group.ID, member.ID); err != nil {
			t.Errorf("Fresh request after rejection failed: %v", err)
		}
	})

	t.Run("Concurrent contributions all land in the pool", func(t *testing.T) {
		const memberCount = 8

		creator := createFundedUser(t, store, "Ama Mensah", "ama-concurrent@example.com", "1000")
		group, err := svc.CreateGroup(ctx, creator.ID, "Concurrent Susu", dec("50"), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		members := []*models.User{creator}
		for i := 1; i < memberCount; i++ {
			u := createFundedUser(t, store, "Member", testEmail("concurrent", i), "1000")
			if _, err := svc.JoinGroup(ctx, group.ID, u.ID); err != nil {
				t.Fatalf("JoinGroup failed: %v", err)
			}
			members = append(members, u)
		}

		var wg sync.WaitGroup
		errs := make(chan error, memberCount)
		for _, u := range members {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				if _, _, err := svc.Contribute(ctx, group.ID, userID, dec("50")); err != nil {
					errs <- err
				}
			}(u.ID)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("Concurrent contribution failed: %v", err)
		}

		updated, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		want := dec("50").Mul(decimal.NewFromInt(memberCount))
		if !updated.PoolAmount.Equal(want) {
			t.Errorf("PoolAmount: got %s, want %s", updated.PoolAmount, want)
		}
		for _, m := range updated.Members {
			if m.Status != models.MemberPaid {
				t.Errorf("Member %s: got %s, want paid", m.UserID, m.Status)
			}
		}
	})
}

func testEmail(prefix string, i int) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, i)
}
