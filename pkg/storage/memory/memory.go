// Package memory provides an in-memory storage.Store for deterministic
// tests: no database, a store-wide transaction lock standing in for row
// isolation, and injectable faults for the failure paths.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/chris/virtual-roulette/pkg/models"
	"github.com/chris/virtual-roulette/pkg/storage"
)

// Store implements storage.Store in memory.
//
// A unit of work holds the store-wide transaction lock from Begin until its
// terminal transition, which gives the same observable behavior as the
// production store's row locking: concurrent settlements for one account
// serialize, and in-transaction reloads always observe the latest committed
// state.
type Store struct {
	mu       sync.Mutex // guards committed state
	txMu     sync.Mutex // held by the open unit of work
	accounts map[int64]models.Account
	bets     []models.Bet
	nextBet  int64

	// Injectable faults, checked by the corresponding operation.
	CreateErr      error
	SaveChangesErr error
	CommitErr      error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]models.Account),
		nextBet:  1,
	}
}

// Make sure we conform to the interface
var _ storage.Store = (*Store)(nil)

// PutAccount seeds or replaces an account's committed state.
func (s *Store) PutAccount(account models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	s.accounts[account.ID] = account
}

// GetByID reads committed state. An unknown id yields (nil, nil).
func (s *Store) GetByID(_ context.Context, id int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// Save writes committed state directly, outside any transaction.
func (s *Store) Save(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

// Create appends a bet to committed state directly, outside any transaction.
func (s *Store) Create(_ context.Context, bet *models.Bet) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bet.ID = s.nextBet
	s.nextBet++
	s.bets = append(s.bets, *bet)
	return nil
}

// ListByUser retrieves committed bets for a user, most recent first.
func (s *Store) ListByUser(_ context.Context, userID int64, limit, offset int32) ([]models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Bet
	for i := len(s.bets) - 1; i >= 0; i-- {
		if s.bets[i].UserID == userID {
			matched = append(matched, s.bets[i])
		}
	}
	if int(offset) >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if int(limit) < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Bets returns a copy of all committed bet records.
func (s *Store) Bets() []models.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bet, len(s.bets))
	copy(out, s.bets)
	return out
}

// NewUnitOfWork creates an unstarted unit of work.
func (s *Store) NewUnitOfWork() storage.UnitOfWork {
	return &unitOfWork{store: s}
}

type unitOfWork struct {
	store *Store
	begun bool
	done  bool

	stagedAccounts []models.Account
	stagedBets     []*models.Bet
	flushed        bool
}

var _ storage.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) Begin(context.Context) error {
	u.store.txMu.Lock()
	u.begun = true
	return nil
}

func (u *unitOfWork) Accounts() storage.AccountStore {
	return uowAccounts{u}
}

func (u *unitOfWork) Ledger() storage.LedgerStore {
	return uowLedger{u}
}

func (u *unitOfWork) SaveChanges(context.Context) error {
	if !u.begun {
		return storage.ErrNoTransaction
	}
	if u.store.SaveChangesErr != nil {
		return u.store.SaveChangesErr
	}
	u.flushed = true
	return nil
}

func (u *unitOfWork) Commit(context.Context) error {
	if !u.begun || u.done {
		return nil
	}
	if u.store.CommitErr != nil {
		return u.store.CommitErr
	}

	// Staged mutations become durable only if they were flushed first.
	if u.flushed {
		u.store.mu.Lock()
		for _, a := range u.stagedAccounts {
			u.store.accounts[a.ID] = a
		}
		for _, b := range u.stagedBets {
			b.ID = u.store.nextBet
			u.store.nextBet++
			u.store.bets = append(u.store.bets, *b)
		}
		u.store.mu.Unlock()
	}

	u.done = true
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback(context.Context) error {
	if !u.begun || u.done {
		return nil
	}
	u.stagedAccounts = nil
	u.stagedBets = nil
	u.done = true
	u.store.txMu.Unlock()
	return nil
}

type uowAccounts struct {
	u *unitOfWork
}

func (a uowAccounts) GetByID(_ context.Context, id int64) (*models.Account, error) {
	if !a.u.begun {
		return nil, storage.ErrNoTransaction
	}
	a.u.store.mu.Lock()
	defer a.u.store.mu.Unlock()
	acct, ok := a.u.store.accounts[id]
	if !ok {
		return nil, nil
	}
	return &acct, nil
}

func (a uowAccounts) Save(_ context.Context, account *models.Account) error {
	if !a.u.begun {
		return storage.ErrNoTransaction
	}
	a.u.stagedAccounts = append(a.u.stagedAccounts, *account)
	return nil
}

type uowLedger struct {
	u *unitOfWork
}

func (l uowLedger) Create(_ context.Context, bet *models.Bet) error {
	if !l.u.begun {
		return storage.ErrNoTransaction
	}
	if l.u.store.CreateErr != nil {
		return l.u.store.CreateErr
	}
	l.u.stagedBets = append(l.u.stagedBets, bet)
	return nil
}

func (l uowLedger) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]models.Bet, error) {
	if !l.u.begun {
		return nil, storage.ErrNoTransaction
	}
	return l.u.store.ListByUser(ctx, userID, limit, offset)
}
