package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/models"
)

// CreateGroup persists a new group together with its initial members
// (normally just the creator).
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, contribution_amount, frequency, creator_id,
		                     pool_amount, next_payout_member_id, next_payout_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.ContributionAmount.String(), string(group.Frequency),
		group.CreatorID, group.PoolAmount.String(), group.NextPayoutMemberID,
		group.NextPayoutDate, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i := range group.Members {
		m := &group.Members[i]
		if err := insertMemberTx(ctx, tx, group.ID, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertMemberTx(ctx context.Context, tx *sql.Tx, groupID string, m *models.GroupMember) error {
	var paymentDate interface{}
	if m.PaymentDate != 0 {
		paymentDate = m.PaymentDate
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, member_id, name, status, payment_date, position)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		groupID, m.UserID, m.Name, string(m.Status), paymentDate, m.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with members, payout requests and chat history.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var contribution, pool, frequency string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, contribution_amount, frequency, creator_id, pool_amount,
		        next_payout_member_id, next_payout_date, created_at
		 FROM groups WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Name, &contribution, &frequency, &group.CreatorID,
		&pool, &group.NextPayoutMemberID, &group.NextPayoutDate, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Frequency = models.Frequency(frequency)
	if group.ContributionAmount, err = parseAmount(contribution); err != nil {
		return nil, err
	}
	if group.PoolAmount, err = parseAmount(pool); err != nil {
		return nil, err
	}

	if group.Members, err = s.listMembers(ctx, groupID); err != nil {
		return nil, err
	}
	if group.PayoutRequests, err = s.listPayoutRequests(ctx, groupID); err != nil {
		return nil, err
	}
	msgs, err := s.ListMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		group.ChatHistory = append(group.ChatHistory, *m)
	}

	return group, nil
}

func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, name, status, payment_date, position
		 FROM group_members WHERE group_id = ? ORDER BY position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		var status string
		var paymentDate sql.NullInt64
		if err := rows.Scan(&m.UserID, &m.Name, &status, &paymentDate, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		m.Status = models.MemberStatus(status)
		if paymentDate.Valid {
			m.PaymentDate = paymentDate.Int64
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return members, nil
}

func (s *SQLiteStore) listPayoutRequests(ctx context.Context, groupID string) ([]models.PayoutRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, requester_id, requester_name, amount, status, created_at
		 FROM payout_requests WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payout requests: %w", err)
	}
	defer rows.Close()

	var requests []models.PayoutRequest
	for rows.Next() {
		req := models.PayoutRequest{GroupID: groupID}
		var amount, status string
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.RequesterName, &amount, &status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payout request: %w", err)
		}
		req.Status = models.PayoutStatus(status)
		var perr error
		if req.Amount, perr = parseAmount(amount); perr != nil {
			return nil, perr
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payout requests: %w", err)
	}

	return requests, nil
}

// ListGroupsForUser returns every group the user belongs to.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.member_id = ? ORDER BY g.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group ids: %w", err)
	}

	var groups []*models.Group
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// AddMember appends a member at the end of the join order.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID string, member *models.GroupMember) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxPos sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(position) FROM group_members WHERE group_id = ?", groupID,
	).Scan(&maxPos); err != nil {
		return fmt.Errorf("failed to read member positions: %w", err)
	}
	if maxPos.Valid {
		member.Position = int(maxPos.Int64) + 1
	} else {
		member.Position = 0
	}

	if err := insertMemberTx(ctx, tx, groupID, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RecordContribution debits the member's wallet, marks the member paid,
// grows the pool and appends a CONTRIBUTION record, all in one transaction.
func (s *SQLiteStore) RecordContribution(ctx context.Context, groupID, memberID string, amount decimal.Decimal) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	var groupName, pool string
	err = tx.QueryRowContext(ctx,
		"SELECT name, pool_amount FROM groups WHERE id = ?", groupID,
	).Scan(&groupName, &pool)
	if err == sql.ErrNoRows {
		return nil, models.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read group: %w", err)
	}
	poolAmount, err := parseAmount(pool)
	if err != nil {
		return nil, err
	}

	balance, err := walletBalanceTx(ctx, tx, memberID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}

	if err := setWalletBalanceTx(ctx, tx, memberID, balance.Sub(amount), now); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE groups SET pool_amount = ? WHERE id = ?",
		poolAmount.Add(amount).String(), groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update pool amount: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE group_members SET status = ?, payment_date = ? WHERE group_id = ? AND member_id = ?",
		string(models.MemberPaid), now, groupID, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update member status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check member update: %w", err)
	}
	if affected == 0 {
		return nil, models.ErrNotAMember
	}

	txn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      memberID,
		Type:        models.TransactionContribution,
		Amount:      amount,
		Status:      models.StatusCompleted,
		Description: fmt.Sprintf("Contribution to %s", groupName),
		CreatedAt:   now,
	}
	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// CloseCycle rolls the group into its next cycle: members who contributed
// go back to pending, members who did not are marked overdue, payment dates
// clear, and the next recipient and close date are stamped.
func (s *SQLiteStore) CloseCycle(ctx context.Context, groupID, nextRecipientID string, nextPayoutDate int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE group_members
		 SET status = CASE status WHEN ? THEN ? ELSE ? END,
		     payment_date = NULL
		 WHERE group_id = ?`,
		string(models.MemberPending), string(models.MemberOverdue),
		string(models.MemberPending), groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to reset member statuses: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE groups SET next_payout_member_id = ?, next_payout_date = ? WHERE id = ?",
		nextRecipientID, nextPayoutDate, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group cycle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check cycle update: %w", err)
	}
	if affected == 0 {
		return models.ErrGroupNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CreatePayoutRequest persists a new pending request.
func (s *SQLiteStore) CreatePayoutRequest(ctx context.Context, req *models.PayoutRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payout_requests (id, group_id, requester_id, requester_name, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.GroupID, req.RequesterID, req.RequesterName,
		req.Amount.String(), string(req.Status), req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payout request: %w", err)
	}

	return nil
}

// ApprovePayout credits the requester's wallet with the amount captured at
// request time, appends a PAYOUT record, marks the request approved and
// resets the pool, all atomically. A request that is not pending fails with
// ErrRequestNotFound; a request whose captured amount exceeds the current
// pool fails with ErrInsufficientFunds. In both cases no money moves.
func (s *SQLiteStore) ApprovePayout(ctx context.Context, groupID, requestID string) (*models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()

	var requesterID, amountRaw, poolRaw, groupName string
	err = tx.QueryRowContext(ctx,
		`SELECT pr.requester_id, pr.amount, g.pool_amount, g.name
		 FROM payout_requests pr JOIN groups g ON g.id = pr.group_id
		 WHERE pr.id = ? AND pr.group_id = ? AND pr.status = ?`,
		requestID, groupID, string(models.PayoutPending),
	).Scan(&requesterID, &amountRaw, &poolRaw, &groupName)
	if err == sql.ErrNoRows {
		return nil, models.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payout request: %w", err)
	}
	amount, err := parseAmount(amountRaw)
	if err != nil {
		return nil, err
	}
	pool, err := parseAmount(poolRaw)
	if err != nil {
		return nil, err
	}

	// Two members can hold pending requests against the same pool. The
	// first approval resets the pool, so a captured amount the pool can no
	// longer cover must fail rather than mint money.
	if pool.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}

	// Guard against a concurrent resolution: only a still-pending row flips.
	res, err := tx.ExecContext(ctx,
		"UPDATE payout_requests SET status = ? WHERE id = ? AND status = ?",
		string(models.PayoutApproved), requestID, string(models.PayoutPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve payout request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check payout update: %w", err)
	}
	if affected == 0 {
		return nil, models.ErrRequestNotFound
	}

	balance, err := walletBalanceTx(ctx, tx, requesterID)
	if err != nil {
		return nil, err
	}
	if err := setWalletBalanceTx(ctx, tx, requesterID, balance.Add(amount), now); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE groups SET pool_amount = ? WHERE id = ?",
		decimal.Zero.String(), groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reset pool amount: %w", err)
	}

	txn := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      requesterID,
		Type:        models.TransactionPayout,
		Amount:      amount,
		Status:      models.StatusCompleted,
		Description: fmt.Sprintf("Payout from %s", groupName),
		CreatedAt:   now,
	}
	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// RejectPayout marks a pending request rejected. No money moves.
func (s *SQLiteStore) RejectPayout(ctx context.Context, groupID, requestID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE payout_requests SET status = ? WHERE id = ? AND group_id = ? AND status = ?",
		string(models.PayoutRejected), requestID, groupID, string(models.PayoutPending),
	)
	if err != nil {
		return fmt.Errorf("failed to reject payout request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check payout update: %w", err)
	}
	if affected == 0 {
		return models.ErrRequestNotFound
	}

	return nil
}

// AppendMessage stores a chat message.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, group_id, sender_id, sender_name, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.GroupID, msg.SenderID, msg.SenderName, msg.Text, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	return nil
}

// ListMessages returns the group's chat history in insertion order.
func (s *SQLiteStore) ListMessages(ctx context.Context, groupID string) ([]*models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender_id, sender_name, text, created_at
		 FROM chat_messages WHERE group_id = ? ORDER BY rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{GroupID: groupID}
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.SenderName, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return msgs, nil
}
