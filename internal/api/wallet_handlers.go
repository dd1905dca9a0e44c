package api

import (
	"net/http"

	"github.com/savora-app/savora/internal/middleware"
	"github.com/savora-app/savora/internal/models"
)

type moveMoneyRequest struct {
	Amount string `json:"amount"`
	// Account is the linked account name shown in the transaction
	// description ("Top up from ...", "Withdrawal to ...").
	Account string `json:"account,omitempty"`
}

type transferRequest struct {
	Amount      string `json:"amount"`
	RecipientID string `json:"recipient_id"`
}

type walletResponse struct {
	User        userView        `json:"user"`
	Transaction transactionView `json:"transaction"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req moveMoneyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	user, txn, err := s.ledger.Deposit(r.Context(), middleware.GetUserID(r.Context()), amount, req.Account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{User: toUserView(user), Transaction: toTransactionView(txn)})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req moveMoneyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	user, txn, err := s.ledger.Withdraw(r.Context(), middleware.GetUserID(r.Context()), amount, req.Account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{User: toUserView(user), Transaction: toTransactionView(txn)})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.RecipientID == "" {
		writeError(w, models.ErrUserNotFound)
		return
	}

	user, txn, err := s.ledger.Transfer(r.Context(), middleware.GetUserID(r.Context()), req.RecipientID, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{User: toUserView(user), Transaction: toTransactionView(txn)})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.ledger.Transactions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		views = append(views, toTransactionView(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": views})
}
