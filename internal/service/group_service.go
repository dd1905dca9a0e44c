package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/rotation"
	"github.com/savora-app/savora/internal/storage"
)

// GroupService is the rotation engine for Susu groups: membership,
// per-cycle contribution status, cycle advancement and the payout
// request/approve/reject workflow. It never touches a wallet balance
// directly; all money movement goes through the store's atomic ledger
// operations.
type GroupService struct {
	store storage.Store
	locks *AggregateLocks
}

// NewGroupService creates a GroupService with the given storage backend.
func NewGroupService(store storage.Store, locks *AggregateLocks) *GroupService {
	return &GroupService{store: store, locks: locks}
}

// CreateGroup creates a group with the creator as sole administrator and
// first member. The first payout rotation starts at the creator.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name string, contribution decimal.Decimal, frequency models.Frequency) (*models.Group, error) {
	if !contribution.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if !frequency.Valid() {
		return nil, models.ErrInvalidFrequency
	}

	creator, err := s.store.GetUserByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	nextDate, err := rotation.NextDate(frequency, now)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:               name,
		ContributionAmount: contribution,
		Frequency:          frequency,
		CreatorID:          creatorID,
		PoolAmount:         decimal.Zero,
		NextPayoutMemberID: creatorID,
		NextPayoutDate:     nextDate.Unix(),
		Members: []models.GroupMember{
			{UserID: creatorID, Name: creator.Name, Status: models.MemberPending, Position: 0},
		},
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "creator_id", creatorID, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "creator_id", creatorID, "name", name)
	return s.store.GetGroup(ctx, group.ID)
}

// JoinGroup adds the user to the rotation with pending status.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	defer s.locks.LockGroup(groupID)()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Member(userID) != nil {
		return nil, models.ErrDuplicateMember
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	member := &models.GroupMember{
		UserID: userID,
		Name:   user.Name,
		Status: models.MemberPending,
	}
	if err := s.store.AddMember(ctx, groupID, member); err != nil {
		slog.Error("JoinGroup failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Member joined group", "group_id", groupID, "user_id", userID)
	return s.store.GetGroup(ctx, groupID)
}

// Contribute records the member's contribution for the current cycle: the
// member's wallet is debited, the pool grows, the member goes to paid with a
// payment date. The amount must equal the group's fixed contribution.
func (s *GroupService) Contribute(ctx context.Context, groupID, memberID string, amount decimal.Decimal) (*models.Group, *models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, models.ErrInvalidAmount
	}

	defer s.locks.LockGroup(groupID)()
	defer s.locks.LockUser(memberID)()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if group.Member(memberID) == nil {
		return nil, nil, models.ErrNotAMember
	}
	if !amount.Equal(group.ContributionAmount) {
		return nil, nil, models.ErrAmountMismatch
	}

	txn, err := s.store.RecordContribution(ctx, groupID, memberID, amount)
	if err != nil {
		slog.Warn("Contribution failed", "group_id", groupID, "member_id", memberID, "error", err)
		return nil, nil, err
	}

	updated, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Contribution recorded",
		"group_id", groupID,
		"member_id", memberID,
		"amount", amount.String(),
		"pool", updated.PoolAmount.String(),
		"progress", rotation.CycleProgress(updated.Members),
	)
	return updated, txn, nil
}

// AdvanceCycle closes the current cycle and starts the next one. Members who
// contributed reset to pending; members who did not are marked overdue and
// notified. The payout recipient rotates to the next member in join order.
// Only the group admin may advance the cycle.
func (s *GroupService) AdvanceCycle(ctx context.Context, groupID, callerID string) (*models.Group, error) {
	defer s.locks.LockGroup(groupID)()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != callerID {
		return nil, models.ErrNotAuthorized
	}

	nextRecipient, err := rotation.NextRecipient(group.Members, group.NextPayoutMemberID)
	if err != nil {
		return nil, err
	}
	nextDate, err := rotation.NextDate(group.Frequency, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.store.CloseCycle(ctx, groupID, nextRecipient, nextDate.Unix()); err != nil {
		slog.Error("AdvanceCycle failed", "group_id", groupID, "error", err)
		return nil, err
	}

	// Unpaid members were just marked overdue; let them know.
	for _, m := range group.Members {
		if m.Status != models.MemberPending {
			continue
		}
		n := &models.Notification{
			Title:   "Missed contribution",
			Message: fmt.Sprintf("You missed a contribution cycle in %s. Contribute now to stay in the rotation.", group.Name),
			Type:    models.NotificationWarning,
		}
		if err := s.store.AppendNotification(ctx, m.UserID, n); err != nil {
			slog.Warn("Failed to notify overdue member", "group_id", groupID, "member_id", m.UserID, "error", err)
		}
	}

	slog.Info("Cycle advanced", "group_id", groupID, "next_recipient", nextRecipient)
	return s.store.GetGroup(ctx, groupID)
}

// RequestPayout files a pending payout request for the full pool amount.
// The amount is fixed at request time; later contributions do not change an
// already-filed request.
func (s *GroupService) RequestPayout(ctx context.Context, groupID, requesterID string) (*models.PayoutRequest, error) {
	defer s.locks.LockGroup(groupID)()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	member := group.Member(requesterID)
	if member == nil {
		return nil, models.ErrNotAMember
	}
	if group.PendingRequestBy(requesterID) {
		return nil, models.ErrDuplicateRequest
	}

	req := &models.PayoutRequest{
		GroupID:       groupID,
		RequesterID:   requesterID,
		RequesterName: member.Name,
		Amount:        group.PoolAmount,
		Status:        models.PayoutPending,
	}
	if err := s.store.CreatePayoutRequest(ctx, req); err != nil {
		slog.Error("RequestPayout failed", "group_id", groupID, "requester_id", requesterID, "error", err)
		return nil, err
	}

	n := &models.Notification{
		Title:   "Payout requested",
		Message: fmt.Sprintf("%s requested a payout of %s from %s.", member.Name, req.Amount.String(), group.Name),
		Type:    models.NotificationInfo,
	}
	if err := s.store.AppendNotification(ctx, group.CreatorID, n); err != nil {
		slog.Warn("Failed to notify admin of payout request", "group_id", groupID, "error", err)
	}

	slog.Info("Payout requested",
		"group_id", groupID,
		"requester_id", requesterID,
		"amount", req.Amount.String(),
		"request_id", req.ID,
	)
	return req, nil
}

// ApprovePayout releases the requested amount to the requester's wallet and
// resets the pool. Only the group's creator may approve.
func (s *GroupService) ApprovePayout(ctx context.Context, groupID, adminID, requestID string) (*models.Group, *models.Transaction, error) {
	defer s.locks.LockGroup(groupID)()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if group.CreatorID != adminID {
		return nil, nil, models.ErrNotAuthorized
	}

	var requesterID string
	for _, req := range group.PayoutRequests {
		if req.ID == requestID && req.Status == models.PayoutPending {
			requesterID = req.RequesterID
			break
		}
	}
	if requesterID == "" {
		return nil, nil, models.ErrRequestNotFound
	}

	unlockUser := s.locks.LockUser(requesterID)
	txn, err := s.store.ApprovePayout(ctx, groupID, requestID)
	unlockUser()
	if err != nil {
		slog.Warn("ApprovePayout failed", "group_id", groupID, "request_id", requestID, "error", err)
		return nil, nil, err
	}

	n := &models.Notification{
		Title:   "Payout approved",
		Message: fmt.Sprintf("Your payout of %s from %s has been approved.", txn.Amount.String(), group.Name),
		Type:    models.NotificationSuccess,
	}
	if err := s.store.AppendNotification(ctx, requesterID, n); err != nil {
		slog.Warn("Failed to notify requester of approval", "group_id", groupID, "error", err)
	}

	updated, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Payout approved",
		"group_id", groupID,
		"request_id", requestID,
		"requester_id", requesterID,
		"amount", txn.Amount.String(),
	)
	return updated, txn, nil
}

// RejectPayout resolves a pending request without moving money. Only the
// group's creator may reject. Rejecting an already-resolved request fails
// with ErrRequestNotFound.
func (s *GroupService) RejectPayout(ctx context.Context, groupID, adminID, requestID string) (*models.Group, error) {
	defer s.locks.LockGroup(groupID)()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != adminID {
		return nil, models.ErrNotAuthorized
	}

	var requesterID string
	for _, req := range group.PayoutRequests {
		if req.ID == requestID {
			requesterID = req.RequesterID
			break
		}
	}

	if err := s.store.RejectPayout(ctx, groupID, requestID); err != nil {
		slog.Warn("RejectPayout failed", "group_id", groupID, "request_id", requestID, "error", err)
		return nil, err
	}

	if requesterID != "" {
		n := &models.Notification{
			Title:   "Payout rejected",
			Message: fmt.Sprintf("Your payout request in %s was rejected by the admin.", group.Name),
			Type:    models.NotificationWarning,
		}
		if err := s.store.AppendNotification(ctx, requesterID, n); err != nil {
			slog.Warn("Failed to notify requester of rejection", "group_id", groupID, "error", err)
		}
	}

	slog.Info("Payout rejected", "group_id", groupID, "request_id", requestID)
	return s.store.GetGroup(ctx, groupID)
}

// Group returns the full group snapshot. Only members may read it; the
// snapshot carries the pool, payout requests and chat history.
func (s *GroupService) Group(ctx context.Context, groupID, callerID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Member(callerID) == nil {
		return nil, models.ErrNotAMember
	}
	return group, nil
}

// GroupsForUser returns every group the user belongs to.
func (s *GroupService) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}
