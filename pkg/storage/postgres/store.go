package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chris/virtual-roulette/pkg/storage"
)

// Store implements the storage.Store interface on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store connected to the given database URL.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return NewWithPool(pool), nil
}

// NewWithPool creates a Store on an existing pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Make sure we conform to the interface
var _ storage.Store = (*Store)(nil)

// NewUnitOfWork creates an unstarted unit of work backed by a database
// transaction.
func (s *Store) NewUnitOfWork() storage.UnitOfWork {
	return &UnitOfWork{pool: s.pool}
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
