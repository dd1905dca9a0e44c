package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/savora-app/savora/internal/auth"
	"github.com/savora-app/savora/internal/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain sentinels to HTTP statuses so clients can render a
// specific, actionable message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidFrequency),
		errors.Is(err, models.ErrAmountMismatch),
		errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrNotAuthorized),
		errors.Is(err, models.ErrNotAMember):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrGroupNotFound),
		errors.Is(err, models.ErrGoalNotFound),
		errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrDuplicateRequest),
		errors.Is(err, models.ErrDuplicateMember),
		errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.Error("Internal error", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

// parseAmount parses a client-supplied decimal string. A malformed amount
// is reported as ErrInvalidAmount, same as a non-positive one.
func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return d, nil
}
