package storage

import (
	"context"

	"github.com/chris/virtual-roulette/pkg/models"
)

// LedgerStore defines the interface for the append-only record of settled
// wagers.
type LedgerStore interface {
	// Create appends a bet record. Inside a unit of work the insert is
	// staged and only flushed by SaveChanges.
	Create(ctx context.Context, bet *models.Bet) error

	// ListByUser retrieves a user's bet history, most recent first.
	ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Bet, error)
}
