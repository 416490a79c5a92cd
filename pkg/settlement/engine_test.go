package settlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/virtual-roulette/pkg/bets"
	"github.com/chris/virtual-roulette/pkg/jackpot"
	"github.com/chris/virtual-roulette/pkg/models"
	"github.com/chris/virtual-roulette/pkg/storage/memory"
	"github.com/chris/virtual-roulette/pkg/websockets"
)

// Straight bet on 20, one chip worth 100 cents. Pays 3600 when 20 is drawn.
const straightOn20 = `[{"T":"v","I":20,"C":1,"K":100}]`

const testIP = "127.0.0.1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedDraw(n int) func() (int, error) {
	return func() (int, error) { return n, nil }
}

func newTestEngine(store *memory.Store, pool jackpot.Pool, pub websockets.Publisher, draw func() (int, error)) *Engine {
	e := NewEngine(store, pool, bets.NewChecker(), pub, discardLogger(), jackpot.DefaultContributionBasisPoints)
	e.draw = draw
	return e
}

// faultyPool wraps a MemoryPool and fails on demand.
type faultyPool struct {
	inner  *jackpot.MemoryPool
	getErr error
	setErr error
}

func (p *faultyPool) Get() (int64, error) {
	if p.getErr != nil {
		return 0, p.getErr
	}
	return p.inner.Get()
}

func (p *faultyPool) Set(v int64) error {
	if p.setErr != nil {
		return p.setErr
	}
	return p.inner.Set(v)
}

// Add degrades a read fault to a zero base and only errors on write faults,
// per the Pool contract.
func (p *faultyPool) Add(delta int64) (int64, error) {
	if p.setErr != nil {
		return 0, p.setErr
	}
	if p.getErr != nil {
		if err := p.inner.Set(delta); err != nil {
			return 0, err
		}
		return delta, nil
	}
	return p.inner.Add(delta)
}

func TestSettle_InvalidBet(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	engine := newTestEngine(store, jackpot.NewMemoryPool(), &websockets.NoOpPublisher{}, fixedDraw(0))

	_, err := engine.Settle(context.Background(), "invalid_bet_string", 1, testIP)

	assert.ErrorIs(t, err, ErrInvalidBet)
	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(1000), acct.Balance, "no side effects before validation passes")
	assert.Empty(t, store.Bets())
}

// Scenario C: unknown user, no state mutation anywhere.
func TestSettle_UserNotFound(t *testing.T) {
	store := memory.NewStore()
	pool := jackpot.NewMemoryPool()
	engine := newTestEngine(store, pool, &websockets.NoOpPublisher{}, fixedDraw(0))

	_, err := engine.Settle(context.Background(), straightOn20, 99, testIP)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, store.Bets())
	v, _ := pool.Get()
	assert.Equal(t, int64(0), v)
}

// Scenario B: balance 50, stake 100.
func TestSettle_InsufficientBalance(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 50})
	engine := newTestEngine(store, jackpot.NewMemoryPool(), &websockets.NoOpPublisher{}, fixedDraw(0))

	_, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(50), acct.Balance)
	assert.Empty(t, store.Bets())
}

// Scenario A: balance 1000, stake 100, losing outcome.
func TestSettle_LosingBet(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	pool := jackpot.NewMemoryPool()
	engine := newTestEngine(store, pool, &websockets.NoOpPublisher{}, fixedDraw(21))

	result, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	require.NoError(t, err)
	assert.Equal(t, 21, result.WinningNumber)
	assert.Equal(t, int64(0), result.WonAmountInCents)
	assert.NotEqual(t, uuid.Nil, result.SpinID)

	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(900), acct.Balance)

	recorded := store.Bets()
	require.Len(t, recorded, 1)
	bet := recorded[0]
	assert.Equal(t, result.SpinID, bet.SpinID)
	assert.Equal(t, int64(1), bet.UserID)
	assert.Equal(t, straightOn20, bet.BetString)
	assert.Equal(t, int64(100), bet.BetAmountInCents)
	assert.Equal(t, 21, bet.WinningNumber)
	assert.Equal(t, int64(0), bet.WonAmountInCents)
	assert.Equal(t, testIP, bet.IPAddress)
	assert.False(t, bet.CreatedAt.IsZero())

	// 1% of a 100 cent stake, in internal fixed-point units.
	v, _ := pool.Get()
	assert.Equal(t, jackpot.Contribution(100, 100), v)
}

func TestSettle_WinningBet(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	pool := jackpot.NewMemoryPool()
	spy := &websockets.SpyPublisher{}
	engine := newTestEngine(store, pool, spy, fixedDraw(20))

	result, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	require.NoError(t, err)
	assert.Equal(t, 20, result.WinningNumber)
	assert.Equal(t, int64(3600), result.WonAmountInCents)

	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(1000-100+3600), acct.Balance)

	recorded := store.Bets()
	require.Len(t, recorded, 1)
	assert.Equal(t, int64(3600), recorded[0].WonAmountInCents)

	// The jackpot grows on wins too, and the broadcast carries the new
	// durably stored value.
	want := jackpot.Contribution(100, 100)
	v, _ := pool.Get()
	assert.Equal(t, want, v)
	require.Eventually(t, func() bool {
		return len(spy.Messages()) == 1
	}, time.Second, 5*time.Millisecond, "broadcast is fire-and-forget but must arrive")
	msg := spy.Messages()[0]
	assert.Equal(t, websockets.MessageTypeJackpotUpdate, msg.Type)
	assert.Equal(t, websockets.JackpotUpdatePayload{AmountInternal: want}, msg.Payload)
}

// Conservation: finalBalance = initialBalance - sum(stakes) + sum(payouts),
// exactly, across a mixed win/lose sequence.
func TestSettle_Conservation(t *testing.T) {
	const initial = int64(100_000)
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: initial})
	engine := newTestEngine(store, jackpot.NewMemoryPool(), &websockets.NoOpPublisher{}, nil)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		// Alternate hits and misses on the straight bet.
		if i%2 == 0 {
			engine.draw = fixedDraw(20)
		} else {
			engine.draw = fixedDraw(5)
		}
		_, err := engine.Settle(ctx, straightOn20, 1, testIP)
		require.NoError(t, err)
	}

	var stakes, payouts int64
	for _, b := range store.Bets() {
		stakes += b.BetAmountInCents
		payouts += b.WonAmountInCents
	}
	acct, _ := store.GetByID(ctx, 1)
	assert.Equal(t, initial-stakes+payouts, acct.Balance)
	assert.Equal(t, int64(25*3600), payouts)
}

// No over-draw: two concurrent wagers whose combined stake exceeds the
// balance; exactly one succeeds, the other observes InsufficientBalance.
func TestSettle_ConcurrentOverdraw(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 150})
	engine := newTestEngine(store, jackpot.NewMemoryPool(), &websockets.NoOpPublisher{}, fixedDraw(5))

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.Settle(context.Background(), straightOn20, 1, testIP)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)

	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(50), acct.Balance)
	assert.Len(t, store.Bets(), 1)
}

// Scenario D: ledger insert forced to fail after debit. The balance must be
// restored and the pool untouched (the contribution sits outside the
// transaction and is only applied after a successful commit).
func TestSettle_LedgerFailureRollsBack(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	store.CreateErr = errors.New("ledger write refused")
	pool := jackpot.NewMemoryPool()
	spy := &websockets.SpyPublisher{}
	engine := newTestEngine(store, pool, spy, fixedDraw(5))

	_, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	require.Error(t, err)
	assert.ErrorContains(t, err, "ledger write refused")
	assert.NotErrorIs(t, err, ErrInvalidBet)
	assert.NotErrorIs(t, err, ErrInsufficientBalance)

	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(1000), acct.Balance, "rollback must restore the balance")
	assert.Empty(t, store.Bets())
	v, _ := pool.Get()
	assert.Equal(t, int64(0), v, "a rolled-back wager never contributes")
	assert.Empty(t, spy.Messages())
}

func TestSettle_SaveChangesFailureRollsBack(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	store.SaveChangesErr = errors.New("flush refused")
	engine := newTestEngine(store, jackpot.NewMemoryPool(), &websockets.NoOpPublisher{}, fixedDraw(5))

	_, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	require.Error(t, err)
	assert.ErrorContains(t, err, "flush refused")
	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(1000), acct.Balance)
	assert.Empty(t, store.Bets())
}

func TestSettle_CommitFailureRollsBack(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	store.CommitErr = errors.New("commit refused")
	engine := newTestEngine(store, jackpot.NewMemoryPool(), &websockets.NoOpPublisher{}, fixedDraw(5))

	_, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	require.Error(t, err)
	assert.ErrorContains(t, err, "commit refused")
	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(1000), acct.Balance)
	assert.Empty(t, store.Bets())
}

// A jackpot read fault degrades to a zero base; the wager still settles and
// the broadcast still goes out with the stored value.
func TestSettle_PoolReadFaultDegrades(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	pool := &faultyPool{inner: jackpot.NewMemoryPool(), getErr: errors.New("cache read fault")}
	spy := &websockets.SpyPublisher{}
	engine := newTestEngine(store, pool, spy, fixedDraw(5))

	_, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	require.NoError(t, err, "a pool fault never fails the wager")
	require.Eventually(t, func() bool {
		return len(spy.Messages()) == 1
	}, time.Second, 5*time.Millisecond)
}

// A jackpot write fault is non-fatal but must suppress the broadcast: don't
// tell subscribers about a value that was not durably stored.
func TestSettle_PoolWriteFaultSuppressesBroadcast(t *testing.T) {
	store := memory.NewStore()
	store.PutAccount(models.Account{ID: 1, Username: "ana", Balance: 1000})
	pool := &faultyPool{inner: jackpot.NewMemoryPool(), setErr: errors.New("cache write fault")}
	spy := &websockets.SpyPublisher{}
	engine := newTestEngine(store, pool, spy, fixedDraw(5))

	_, err := engine.Settle(context.Background(), straightOn20, 1, testIP)

	require.NoError(t, err, "a pool fault never fails the wager")
	acct, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, int64(900), acct.Balance, "money movement is unaffected")
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, spy.Messages())
}

// Jackpot monotonicity under concurrency: N interleaved settlements leave
// the pool at exactly the sum of their contributions.
func TestSettle_ConcurrentJackpotContributions(t *testing.T) {
	const players = 100
	store := memory.NewStore()
	for i := int64(1); i <= players; i++ {
		store.PutAccount(models.Account{ID: i, Balance: 1000})
	}
	pool := jackpot.NewMemoryPool()
	engine := newTestEngine(store, pool, &websockets.NoOpPublisher{}, fixedDraw(5))

	var wg sync.WaitGroup
	wg.Add(players)
	for i := int64(1); i <= players; i++ {
		go func(id int64) {
			defer wg.Done()
			_, err := engine.Settle(context.Background(), straightOn20, id, testIP)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	v, err := pool.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(players)*jackpot.Contribution(100, 100), v)
}

func TestDrawWinningNumber_Range(t *testing.T) {
	for i := 0; i < 10_000; i++ {
		n, err := DrawWinningNumber()
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.LessOrEqual(t, n, 36)
	}
}

// Frequencies over a large sample must be statistically consistent with a
// uniform draw over 37 values. With 37,000 draws the expected count per
// number is 1,000 with a standard deviation of ~31; the bounds below sit
// beyond eight standard deviations.
func TestDrawWinningNumber_Uniformity(t *testing.T) {
	const draws = 37_000
	counts := make([]int, 37)
	for i := 0; i < draws; i++ {
		n, err := DrawWinningNumber()
		require.NoError(t, err)
		counts[n]++
	}
	for n, c := range counts {
		assert.Greater(t, c, 700, "number %d drawn suspiciously rarely", n)
		assert.Less(t, c, 1300, "number %d drawn suspiciously often", n)
	}
}
