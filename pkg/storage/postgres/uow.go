package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chris/virtual-roulette/pkg/models"
	"github.com/chris/virtual-roulette/pkg/storage"
)

const selectAccountForUpdate = selectAccount + ` FOR UPDATE`

// UnitOfWork implements storage.UnitOfWork on a pgx transaction. Mutations
// are staged in order and executed by SaveChanges; Commit finalizes the
// transaction. The zero terminal-state contract (Commit/Rollback before
// Begin are no-ops) matches the engine's single cleanup path.
type UnitOfWork struct {
	pool   *pgxpool.Pool
	tx     pgx.Tx
	staged []func(ctx context.Context, tx pgx.Tx) error
}

var _ storage.UnitOfWork = (*UnitOfWork)(nil)

// Begin opens the database transaction.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	u.tx = tx
	return nil
}

// Accounts returns the account repository bound to this transaction.
func (u *UnitOfWork) Accounts() storage.AccountStore {
	return &txAccounts{uow: u}
}

// Ledger returns the ledger repository bound to this transaction.
func (u *UnitOfWork) Ledger() storage.LedgerStore {
	return &txLedger{uow: u}
}

// SaveChanges executes all staged mutations inside the transaction.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	if u.tx == nil {
		return storage.ErrNoTransaction
	}
	for _, op := range u.staged {
		if err := op(ctx, u.tx); err != nil {
			return fmt.Errorf("failed to flush staged changes: %w", err)
		}
	}
	u.staged = nil
	return nil
}

// Commit finalizes the transaction. No-op if Begin was never called.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction. No-op if Begin was never called.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// txAccounts reads through the open transaction with a row lock, so two
// settlements for the same account serialize at the database row.
type txAccounts struct {
	uow *UnitOfWork
}

func (a *txAccounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if a.uow.tx == nil {
		return nil, storage.ErrNoTransaction
	}
	return scanAccount(a.uow.tx.QueryRow(ctx, selectAccountForUpdate, id))
}

func (a *txAccounts) Save(_ context.Context, account *models.Account) error {
	if a.uow.tx == nil {
		return storage.ErrNoTransaction
	}
	id, balance := account.ID, account.Balance
	a.uow.staged = append(a.uow.staged, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateAccountBalance, id, balance)
		if err != nil {
			return fmt.Errorf("failed to save account %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("account %d does not exist", id)
		}
		return nil
	})
	return nil
}

type txLedger struct {
	uow *UnitOfWork
}

func (l *txLedger) Create(_ context.Context, bet *models.Bet) error {
	if l.uow.tx == nil {
		return storage.ErrNoTransaction
	}
	l.uow.staged = append(l.uow.staged, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertBet,
			bet.SpinID, bet.UserID, bet.BetString, bet.BetAmountInCents,
			bet.WinningNumber, bet.WonAmountInCents, bet.IPAddress, bet.CreatedAt,
		).Scan(&bet.ID)
		if err != nil {
			return fmt.Errorf("failed to create bet record: %w", err)
		}
		return nil
	})
	return nil
}

func (l *txLedger) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Bet, error) {
	if l.uow.tx == nil {
		return nil, storage.ErrNoTransaction
	}
	rows, err := l.uow.tx.Query(ctx, selectBetsByUser, userID, limit, offset)
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
