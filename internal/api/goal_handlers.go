package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/savora-app/savora/internal/middleware"
)

type createGoalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	Deadline     string `json:"deadline"` // RFC 3339 date, e.g. "2026-12-25"
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
}

type fundGoalRequest struct {
	Amount string `json:"amount"`
}

type fundGoalResponse struct {
	User        userView        `json:"user"`
	Goal        goalView        `json:"goal"`
	Transaction transactionView `json:"transaction"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "goal name is required"})
		return
	}
	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	deadline, err := time.Parse("2006-01-02", req.Deadline)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "deadline must be a YYYY-MM-DD date"})
		return
	}

	goal, err := s.savings.CreateGoal(r.Context(), middleware.GetUserID(r.Context()),
		req.Name, target, deadline, req.Icon, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"goal": toGoalView(goal)})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.savings.Goals(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": views})
}

func (s *Server) handleFundGoal(w http.ResponseWriter, r *http.Request) {
	var req fundGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	user, goal, txn, err := s.savings.FundGoal(r.Context(),
		middleware.GetUserID(r.Context()), r.PathValue("goalId"), amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fundGoalResponse{
		User:        toUserView(user),
		Goal:        toGoalView(goal),
		Transaction: toTransactionView(txn),
	})
}
