package api

import (
	"net/http"
	"strings"

	"github.com/savora-app/savora/internal/middleware"
	"github.com/savora-app/savora/internal/models"
)

type createGroupRequest struct {
	Name               string `json:"name"`
	ContributionAmount string `json:"contribution_amount"`
	Frequency          string `json:"frequency"`
}

type contributeRequest struct {
	Amount string `json:"amount"`
}

type contributeResponse struct {
	Group       groupView       `json:"group"`
	Transaction transactionView `json:"transaction"`
}

type postMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "group name is required"})
		return
	}
	contribution, err := parseAmount(req.ContributionAmount)
	if err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()),
		req.Name, contribution, models.Frequency(req.Frequency))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"group": toGroupView(group)})
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.GroupsForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, toGroupView(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": views})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Group(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": toGroupView(group)})
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.JoinGroup(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": toGroupView(group)})
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	group, txn, err := s.groups.Contribute(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()), amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contributeResponse{
		Group:       toGroupView(group),
		Transaction: toTransactionView(txn),
	})
}

func (s *Server) handleAdvanceCycle(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.AdvanceCycle(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": toGroupView(group)})
}

func (s *Server) handleRequestPayout(w http.ResponseWriter, r *http.Request) {
	request, err := s.groups.RequestPayout(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"request": toPayoutRequestView(request)})
}

func (s *Server) handleApprovePayout(w http.ResponseWriter, r *http.Request) {
	group, txn, err := s.groups.ApprovePayout(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()), r.PathValue("requestId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contributeResponse{
		Group:       toGroupView(group),
		Transaction: toTransactionView(txn),
	})
}

func (s *Server) handleRejectPayout(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.RejectPayout(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()), r.PathValue("requestId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": toGroupView(group)})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message text is required"})
		return
	}

	msg, err := s.chat.PostMessage(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": toMessageView(msg)})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.chat.Messages(r.Context(), r.PathValue("groupId"),
		middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, toMessageView(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": views})
}
