package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/savora-app/savora/internal/models"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, password_hash, avatar, referral_code,
		                   wallet_balance, savings_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Avatar,
		user.ReferralCode,
		user.WalletBalance.String(),
		user.SavingsBalance.String(),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, name, email, phone, password_hash, avatar, referral_code,
	wallet_balance, savings_balance, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var wallet, savings string
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Avatar,
		&user.ReferralCode,
		&wallet,
		&savings,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if user.WalletBalance, err = parseAmount(wallet); err != nil {
		return nil, err
	}
	if user.SavingsBalance, err = parseAmount(savings); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email,
	)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID with linked accounts loaded.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id,
	)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	accounts, err := s.listLinkedAccounts(ctx, id)
	if err != nil {
		return nil, err
	}
	user.LinkedAccounts = accounts

	return user, nil
}

func (s *SQLiteStore) listLinkedAccounts(ctx context.Context, userID string) ([]models.LinkedAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, provider, account_number, account_name, is_primary
		 FROM linked_accounts WHERE user_id = ? ORDER BY rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.LinkedAccount
	for rows.Next() {
		var acc models.LinkedAccount
		var accType string
		if err := rows.Scan(&acc.ID, &accType, &acc.Provider, &acc.AccountNumber, &acc.AccountName, &acc.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan linked account: %w", err)
		}
		acc.Type = models.AccountType(accType)
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate linked accounts: %w", err)
	}

	return accounts, nil
}

// LinkAccount attaches an external payment rail. The first account a user
// links becomes primary automatically.
func (s *SQLiteStore) LinkAccount(ctx context.Context, userID string, account *models.LinkedAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM linked_accounts WHERE user_id = ?", userID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to count linked accounts: %w", err)
	}
	if count == 0 {
		account.IsPrimary = true
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO linked_accounts (id, user_id, type, provider, account_number, account_name, is_primary)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID, userID, string(account.Type), account.Provider,
		account.AccountNumber, account.AccountName, account.IsPrimary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert linked account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetPrimaryAccount flips the primary flag to the given account, clearing
// every other account's flag in the same transaction so exactly one primary
// remains.
func (s *SQLiteStore) SetPrimaryAccount(ctx context.Context, userID, accountID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE linked_accounts SET is_primary = 1 WHERE id = ? AND user_id = ?",
		accountID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set primary account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check primary update: %w", err)
	}
	if affected == 0 {
		return models.ErrAccountNotFound
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE linked_accounts SET is_primary = 0 WHERE user_id = ? AND id != ?",
		userID, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear primary flags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AppendNotification stores a per-user notification.
func (s *SQLiteStore) AppendNotification(ctx context.Context, userID string, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, message, type, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, userID, n.Title, n.Message, string(n.Type), n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// ListNotifications returns the user's notifications, most recent first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, message, type, read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var nType string
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &nType, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(nType)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
