package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents the internal domain model for a player's wallet.
// Balance is held in cents and is never negative outside an uncommitted
// transaction.
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Bet is a single settled wager as recorded in the ledger. A row is written
// exactly once per successful settlement and is immutable afterwards.
type Bet struct {
	ID               int64     `json:"id"`
	SpinID           uuid.UUID `json:"spin_id"`
	UserID           int64     `json:"user_id"`
	BetString        string    `json:"bet_string"`
	BetAmountInCents int64     `json:"bet_amount_in_cents"`
	WinningNumber    int       `json:"winning_number"`
	WonAmountInCents int64     `json:"won_amount_in_cents"`
	IPAddress        string    `json:"ip_address"`
	CreatedAt        time.Time `json:"created_at"`
}

// SpinResult is the successful outcome of one settlement.
type SpinResult struct {
	SpinID           uuid.UUID `json:"spin_id"`
	WinningNumber    int       `json:"winning_number"`
	WonAmountInCents int64     `json:"won_amount_in_cents"`
}
