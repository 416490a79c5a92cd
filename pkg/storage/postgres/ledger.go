package postgres

import (
	"context"
	"fmt"

	"github.com/chris/virtual-roulette/pkg/models"
)

const insertBet = `
	INSERT INTO bets (spin_id, user_id, bet_string, bet_amount_in_cents,
	                  winning_number, won_amount_in_cents, ip_address, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
`

const selectBetsByUser = `
	SELECT id, spin_id, user_id, bet_string, bet_amount_in_cents,
	       winning_number, won_amount_in_cents, ip_address, created_at
	FROM bets
	WHERE user_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2 OFFSET $3
`

// Create appends a bet record outside any transaction.
func (s *Store) Create(ctx context.Context, bet *models.Bet) error {
	err := s.pool.QueryRow(ctx, insertBet,
		bet.SpinID, bet.UserID, bet.BetString, bet.BetAmountInCents,
		bet.WinningNumber, bet.WonAmountInCents, bet.IPAddress, bet.CreatedAt,
	).Scan(&bet.ID)
	if err != nil {
		return fmt.Errorf("failed to create bet record: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's bet history, most recent first.
func (s *Store) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Bet, error) {
	rows, err := s.pool.Query(ctx, selectBetsByUser, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bets []models.Bet
	for rows.Next() {
		var b models.Bet
		if err := rows.Scan(&b.ID, &b.SpinID, &b.UserID, &b.BetString,
			&b.BetAmountInCents, &b.WinningNumber, &b.WonAmountInCents,
			&b.IPAddress, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bets for user %d: %w", userID, err)
	}
	return bets, nil
}
