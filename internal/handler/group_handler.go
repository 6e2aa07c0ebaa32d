package handler

import (
	"net/http"

	"github.com/mmynk/splitledger/internal/middleware"
)

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	overviews, err := h.engine.ListGroups(r.Context(), principal)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	groups := make([]GroupResponse, len(overviews))
	for i, o := range overviews {
		groups[i] = groupToHTTP(h.currency, o.Group, o.MyBalance, o.Debts)
	}

	writeJSON(w, http.StatusOK, ListGroupsResponse{Success: true, Groups: groups})
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	view, err := h.engine.GetGroup(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	expenses := make([]ExpenseResponse, len(view.Entries))
	for i, entry := range view.Entries {
		expenses[i] = entryToHTTP(h.currency, view.Group, entry)
	}

	writeJSON(w, http.StatusOK, GetGroupResponse{
		Success:  true,
		Group:    groupToHTTP(h.currency, view.Group, view.MyBalance, view.Debts),
		Expenses: expenses,
	})
}

func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())

	report, err := h.engine.GetBalances(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GetBalancesResponse{
		Success:       true,
		Version:       report.Version,
		Balances:      balancesToHTTP(h.currency, report.Balances),
		SimplifyDebts: debtsToHTTP(h.currency, report.Debts),
	})
}
