// Package handler serves the REST API consumed by the web client.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/money"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	engine   *ledger.Engine
	currency money.Currency
}

func NewHandler(engine *ledger.Engine, currency money.Currency) *Handler {
	return &Handler{
		engine:   engine,
		currency: currency,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &requestError{Message: "invalid request body: " + err.Error()}
	}
	return nil
}
