package jackpot

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/virtual-roulette/pkg/jackpot"
)

// JackpotHandler holds the dependencies for jackpot read handlers.
type JackpotHandler struct {
	Pool jackpot.Pool
}

// NewJackpotHandler creates a new JackpotHandler.
func NewJackpotHandler(pool jackpot.Pool) *JackpotHandler {
	return &JackpotHandler{Pool: pool}
}

// CurrentResponse reports the pool value in both its internal fixed-point
// unit and whole cents.
type CurrentResponse struct {
	AmountInternal int64 `json:"amount_internal"`
	AmountInCents  int64 `json:"amount_in_cents"`
}

// GetCurrent handles the logic for reading the current jackpot value.
func (h *JackpotHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	value, err := h.Pool.Get()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read jackpot: %v", err), http.StatusInternalServerError)
		return
	}

	resp := CurrentResponse{
		AmountInternal: value,
		AmountInCents:  value / jackpot.InternalUnitsPerCent,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
