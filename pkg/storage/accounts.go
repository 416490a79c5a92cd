package storage

import (
	"context"

	"github.com/chris/virtual-roulette/pkg/models"
)

// AccountStore defines the interface for reading and mutating player
// balances.
type AccountStore interface {
	// GetByID retrieves an account. An unknown id yields (nil, nil), not an
	// error; classification of a missing user belongs to the caller.
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// Save persists the account's current state. Inside a unit of work the
	// mutation is staged and only flushed by SaveChanges.
	Save(ctx context.Context, account *models.Account) error
}
