package handler

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
)

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	amount, err := amountFromHTTP(h.currency, "amount", req.Amount)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	exact, err := sharesFromHTTP(h.currency, req.Shares)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	items, err := itemsFromHTTP(h.currency, req.Items)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	shares, err := ledger.ResolveShares(ledger.SplitRequest{
		Type:         ledger.SplitType(req.SplitType),
		Amount:       amount,
		PayerID:      req.PaidBy,
		Participants: req.Participants,
		Shares:       exact,
		Weights:      weightsFromHTTP(req.Weights),
		Items:        items,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	principal := middleware.PrincipalFrom(r.Context())
	expense := &models.Expense{
		GroupID:     r.PathValue("id"),
		Description: req.Description,
		Amount:      amount,
		PayerID:     req.PaidBy,
		Shares:      shares,
	}
	if err := h.engine.RecordExpense(r.Context(), principal, expense); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateExpenseResponse{
		Success: true,
		Expense: entryToHTTP(h.currency, h.group(r, expense.GroupID), expense),
	})
}

func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req SettlementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	amount, err := amountFromHTTP(h.currency, "amount", req.Amount)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	principal := middleware.PrincipalFrom(r.Context())
	settlement := &models.Settlement{
		GroupID:      r.PathValue("id"),
		FromMemberID: req.From,
		ToMemberID:   req.To,
		Amount:       amount,
		Note:         req.Note,
	}
	if err := h.engine.RecordSettlement(r.Context(), principal, settlement); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSettlementResponse{
		Success:    true,
		Settlement: entryToHTTP(h.currency, h.group(r, settlement.GroupID), settlement),
	})
}

// group loads display names for a write response. The entry is already
// committed, so a failure here falls back to bare member IDs.
func (h *Handler) group(r *http.Request, groupID string) *models.Group {
	group, err := h.engine.Group(r.Context(), middleware.PrincipalFrom(r.Context()), groupID)
	if err != nil {
		slog.Warn("Failed to load group for response", "group_id", groupID, "error", err)
		return &models.Group{ID: groupID}
	}
	return group
}
