package server

import (
	"net/http"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/handler"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
)

// SetupRoutes registers the REST API. Every route requires a bearer token.
func SetupRoutes(mux *http.ServeMux, h *handler.Handler, jwtManager *auth.JWTManager, m *metrics.Metrics) {
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, m.Instrument(pattern, middleware.RequireAuthHTTP(jwtManager, fn)))
	}

	route("GET /api/groups/allgroups", h.ListGroups)
	route("GET /api/groups/{id}", h.GetGroup)
	route("GET /api/groups/{id}/balances", h.GetBalances)
	route("POST /api/groups/{id}/expenses", h.CreateExpense)
	route("POST /api/groups/{id}/settlements", h.CreateSettlement)
}
