package api

import (
	"github.com/savora-app/savora/internal/models"
	"github.com/savora-app/savora/internal/rotation"
)

// View types are the JSON shapes returned to clients. Amounts are rendered
// as decimal strings, never floats.

type userView struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Avatar         string              `json:"avatar,omitempty"`
	ReferralCode   string              `json:"referral_code,omitempty"`
	WalletBalance  string              `json:"wallet_balance"`
	SavingsBalance string              `json:"savings_balance"`
	LinkedAccounts []linkedAccountView `json:"linked_accounts"`
	CreatedAt      int64               `json:"created_at"`
}

type linkedAccountView struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Provider      string `json:"provider"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	IsPrimary     bool   `json:"is_primary"`
}

type transactionView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

type goalView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Deadline      int64  `json:"deadline"`
	Icon          string `json:"icon,omitempty"`
	Color         string `json:"color,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

type memberView struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	PaymentDate int64  `json:"payment_date,omitempty"`
	Position    int    `json:"position"`
}

type payoutRequestView struct {
	ID            string `json:"id"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"created_at"`
}

type messageView struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	CreatedAt  int64  `json:"created_at"`
}

type groupView struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	ContributionAmount string              `json:"contribution_amount"`
	Frequency          string              `json:"frequency"`
	CreatorID          string              `json:"creator_id"`
	PoolAmount         string              `json:"pool_amount"`
	NextPayoutMemberID string              `json:"next_payout_member_id,omitempty"`
	NextPayoutDate     int64               `json:"next_payout_date,omitempty"`
	Progress           int                 `json:"progress"`
	Members            []memberView        `json:"members"`
	PayoutRequests     []payoutRequestView `json:"payout_requests"`
	ChatHistory        []messageView       `json:"chat_history"`
	CreatedAt          int64               `json:"created_at"`
}

type notificationView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

func toUserView(u *models.User) userView {
	accounts := make([]linkedAccountView, 0, len(u.LinkedAccounts))
	for _, a := range u.LinkedAccounts {
		accounts = append(accounts, linkedAccountView{
			ID:            a.ID,
			Type:          string(a.Type),
			Provider:      a.Provider,
			AccountNumber: a.AccountNumber,
			AccountName:   a.AccountName,
			IsPrimary:     a.IsPrimary,
		})
	}
	return userView{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Avatar:         u.Avatar,
		ReferralCode:   u.ReferralCode,
		WalletBalance:  u.WalletBalance.String(),
		SavingsBalance: u.SavingsBalance.String(),
		LinkedAccounts: accounts,
		CreatedAt:      u.CreatedAt,
	}
}

func toTransactionView(t *models.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func toGoalView(g *models.SavingGoal) goalView {
	return goalView{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.String(),
		CurrentAmount: g.CurrentAmount.String(),
		Deadline:      g.Deadline,
		Icon:          g.Icon,
		Color:         g.Color,
		CreatedAt:     g.CreatedAt,
	}
}

func toPayoutRequestView(r *models.PayoutRequest) payoutRequestView {
	return payoutRequestView{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		RequesterName: r.RequesterName,
		Amount:        r.Amount.String(),
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
	}
}

func toMessageView(m *models.ChatMessage) messageView {
	return messageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

func toGroupView(g *models.Group) groupView {
	members := make([]memberView, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, memberView{
			UserID:      m.UserID,
			Name:        m.Name,
			Status:      string(m.Status),
			PaymentDate: m.PaymentDate,
			Position:    m.Position,
		})
	}
	requests := make([]payoutRequestView, 0, len(g.PayoutRequests))
	for i := range g.PayoutRequests {
		requests = append(requests, toPayoutRequestView(&g.PayoutRequests[i]))
	}
	messages := make([]messageView, 0, len(g.ChatHistory))
	for i := range g.ChatHistory {
		messages = append(messages, toMessageView(&g.ChatHistory[i]))
	}
	return groupView{
		ID:                 g.ID,
		Name:               g.Name,
		ContributionAmount: g.ContributionAmount.String(),
		Frequency:          string(g.Frequency),
		CreatorID:          g.CreatorID,
		PoolAmount:         g.PoolAmount.String(),
		NextPayoutMemberID: g.NextPayoutMemberID,
		NextPayoutDate:     g.NextPayoutDate,
		Progress:           rotation.CycleProgress(g.Members),
		Members:            members,
		PayoutRequests:     requests,
		ChatHistory:        messages,
		CreatedAt:          g.CreatedAt,
	}
}

func toNotificationView(n *models.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
