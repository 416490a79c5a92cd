package roulette

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/chris/virtual-roulette/pkg/models"
	"github.com/chris/virtual-roulette/pkg/settlement"
)

// Settler is the slice of the settlement engine the handler needs.
type Settler interface {
	Settle(ctx context.Context, betString string, userID int64, ipAddress string) (*models.SpinResult, error)
}

// RouletteHandler holds the dependencies for wagering handlers.
type RouletteHandler struct {
	Engine Settler
	Logger *slog.Logger
}

// NewRouletteHandler creates a new RouletteHandler.
func NewRouletteHandler(engine Settler, logger *slog.Logger) *RouletteHandler {
	return &RouletteHandler{Engine: engine, Logger: logger}
}

// BetRequest is the body of a bet placement.
type BetRequest struct {
	Bet string `json:"bet"`
}

// BetResponse is the success payload of a settled wager.
type BetResponse struct {
	Status           bool      `json:"status"`
	SpinID           uuid.UUID `json:"spin_id"`
	WinningNumber    int       `json:"winning_number"`
	WonAmountInCents int64     `json:"won_amount_in_cents"`
}

// PlaceBet handles the logic for settling a wager. Authentication is an
// upstream concern; the authenticated user id arrives in the X-User-ID
// header.
func (h *RouletteHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil {
		http.Error(w, "Missing or malformed X-User-ID header", http.StatusBadRequest)
		return
	}

	var req BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.Engine.Settle(r.Context(), req.Bet, userID, clientAddr(r))
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrInvalidBet):
			http.Error(w, "Invalid bet", http.StatusBadRequest)
		case errors.Is(err, settlement.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		case errors.Is(err, settlement.ErrInsufficientBalance):
			http.Error(w, "Insufficient balance", http.StatusUnprocessableEntity)
		default:
			h.Logger.Error("settlement failed", "user_id", userID, "error", err)
			http.Error(w, "Failed to settle bet", http.StatusInternalServerError)
		}
		return
	}

	resp := BetResponse{
		Status:           true,
		SpinID:           result.SpinID,
		WinningNumber:    result.WinningNumber,
		WonAmountInCents: result.WonAmountInCents,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Error("failed to write response", "error", err)
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
