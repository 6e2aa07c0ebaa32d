package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitledger/internal/ledger"
)

// requestError is a malformed request body or parameter.
type requestError struct {
	Field   string
	Message string
}

func (e *requestError) Error() string { return e.Message }

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Message: err.Error()}
	status := http.StatusInternalServerError

	var reqErr *requestError
	var validationErr *ledger.ValidationError
	switch {
	case errors.As(err, &reqErr):
		status, resp.Code = http.StatusBadRequest, "BAD_REQUEST"
	case errors.As(err, &validationErr):
		status, resp.Code = http.StatusBadRequest, "VALIDATION_FAILED"
		resp.Rule = string(validationErr.Rule)
		resp.Message = validationErr.Message
	case errors.Is(err, ledger.ErrUnauthenticated):
		status, resp.Code = http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, ledger.ErrNotMember):
		status, resp.Code = http.StatusForbidden, "NOT_MEMBER"
	case errors.Is(err, ledger.ErrGroupNotFound):
		status, resp.Code = http.StatusNotFound, "NOT_FOUND"
	default:
		resp.Code = "INTERNAL_ERROR"
		resp.Message = "internal server error"
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
