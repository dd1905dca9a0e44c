package api

import (
	"net/http"
	"strings"

	"github.com/savora-app/savora/internal/middleware"
	"github.com/savora-app/savora/internal/models"
)

type linkAccountRequest struct {
	Type          string `json:"type"`
	Provider      string `json:"provider"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.profile.User(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}

func (s *Server) handleLinkAccount(w http.ResponseWriter, r *http.Request) {
	var req linkAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	accountType := models.AccountType(strings.ToUpper(req.Type))
	if accountType != models.AccountMobileMoney && accountType != models.AccountBank {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account type must be MOMO or BANK"})
		return
	}
	if strings.TrimSpace(req.AccountNumber) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account number is required"})
		return
	}

	user, err := s.profile.LinkAccount(r.Context(), middleware.GetUserID(r.Context()),
		accountType, req.Provider, req.AccountNumber, req.AccountName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": toUserView(user)})
}

func (s *Server) handleSetPrimaryAccount(w http.ResponseWriter, r *http.Request) {
	user, err := s.profile.SetPrimaryAccount(r.Context(),
		middleware.GetUserID(r.Context()), r.PathValue("accountId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.profile.Notifications(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, toNotificationView(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": views})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.profile.MarkNotificationRead(r.Context(),
		middleware.GetUserID(r.Context()), r.PathValue("notificationId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
