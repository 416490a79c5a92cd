package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chris/virtual-roulette/pkg/models"
)

const selectAccount = `
	SELECT id, username, balance, created_at FROM accounts
	WHERE id = $1
`

const updateAccountBalance = `
	UPDATE accounts SET balance = $2
	WHERE id = $1
`

// GetByID retrieves an account outside any transaction. An unknown id yields
// (nil, nil).
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, selectAccount, id))
}

// Save persists the account's balance outside any transaction.
func (s *Store) Save(ctx context.Context, account *models.Account) error {
	tag, err := s.pool.Exec(ctx, updateAccountBalance, account.ID, account.Balance)
	if err != nil {
		return fmt.Errorf("failed to save account %d: %w", account.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d does not exist", account.ID)
	}
	return nil
}

type row interface {
	Scan(dest ...any) error
}

func scanAccount(r row) (*models.Account, error) {
	var a models.Account
	err := r.Scan(&a.ID, &a.Username, &a.Balance, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}
