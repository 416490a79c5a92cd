package settlement

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/chris/virtual-roulette/pkg/bets"
	"github.com/chris/virtual-roulette/pkg/jackpot"
	"github.com/chris/virtual-roulette/pkg/metrics"
	"github.com/chris/virtual-roulette/pkg/models"
	"github.com/chris/virtual-roulette/pkg/storage"
	"github.com/chris/virtual-roulette/pkg/websockets"
)

const publishTimeout = 5 * time.Second

// Engine settles wagers: it validates the bet, atomically moves money
// between the player's balance and the ledger inside a unit of work, draws
// the winning number, feeds the jackpot pool and reports the new pool value
// to subscribers.
type Engine struct {
	store          storage.Store
	pool           jackpot.Pool
	evaluator      bets.Evaluator
	publisher      websockets.Publisher
	logger         *slog.Logger
	contributionBP int64

	// draw is replaceable in tests; production draws from crypto/rand.
	draw func() (int, error)
}

// NewEngine creates a settlement engine. A non-positive contribution rate
// falls back to the default 1%.
func NewEngine(
	store storage.Store,
	pool jackpot.Pool,
	evaluator bets.Evaluator,
	publisher websockets.Publisher,
	logger *slog.Logger,
	contributionBasisPoints int64,
) *Engine {
	if contributionBasisPoints <= 0 {
		contributionBasisPoints = jackpot.DefaultContributionBasisPoints
	}
	return &Engine{
		store:          store,
		pool:           pool,
		evaluator:      evaluator,
		publisher:      publisher,
		logger:         logger,
		contributionBP: contributionBasisPoints,
		draw:           DrawWinningNumber,
	}
}

// DrawWinningNumber draws uniformly from [0, 36] using a cryptographically
// strong source. This is a real-money outcome; unpredictability matters as
// much as uniformity.
func DrawWinningNumber() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(37))
	if err != nil {
		return 0, fmt.Errorf("failed to draw winning number: %w", err)
	}
	return int(n.Int64()), nil
}

// Settle processes one wager to a terminal state: either the stake is
// debited, the outcome recorded and the pair committed, or nothing happened.
// The jackpot contribution is applied best-effort after the commit, so a
// rolled-back wager never contributes.
func (e *Engine) Settle(ctx context.Context, betString string, userID int64, ipAddress string) (*models.SpinResult, error) {
	started := time.Now()
	fail := func(result string, err error) (*models.SpinResult, error) {
		metrics.RecordSettlement(result, started)
		return nil, err
	}

	// Step 1: validate the specification. No side effects yet.
	stake, err := e.evaluator.Validate(betString)
	if err != nil {
		return fail(metrics.ResultInvalidBet, fmt.Errorf("%w: %v", ErrInvalidBet, err))
	}

	// Step 2: load the account.
	account, err := e.store.GetByID(ctx, userID)
	if err != nil {
		return fail(metrics.ResultError, fmt.Errorf("failed to load account %d: %w", userID, err))
	}
	if account == nil {
		return fail(metrics.ResultUserNotFound, ErrUserNotFound)
	}

	// Step 3: cheap optimistic rejection before opening a transaction.
	if account.Balance < stake {
		return fail(metrics.ResultInsufficientBalance, ErrInsufficientBalance)
	}

	// Step 4: open the unit of work. From here on every error path runs
	// through the deferred rollback; a rollback failure is logged and never
	// masks the error that triggered it.
	uow := e.store.NewUnitOfWork()
	if err := uow.Begin(ctx); err != nil {
		return fail(metrics.ResultError, fmt.Errorf("failed to open unit of work: %w", err))
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			e.logger.Error("transaction rollback failed", "user_id", userID, "error", rbErr)
		}
	}()

	// Step 5: reload inside the transaction. Mandatory: a concurrent
	// settlement for the same user may have committed between steps 2 and 4,
	// and without this re-check two wagers can over-draw the balance.
	account, err = uow.Accounts().GetByID(ctx, userID)
	if err != nil {
		return fail(metrics.ResultError, fmt.Errorf("failed to reload account %d: %w", userID, err))
	}
	if account == nil {
		return fail(metrics.ResultUserNotFound, ErrUserNotFound)
	}
	if account.Balance < stake {
		return fail(metrics.ResultInsufficientBalance, ErrInsufficientBalance)
	}

	// Step 6: debit the stake. In-process only until SaveChanges.
	account.Balance -= stake

	// Step 7: draw the outcome.
	winningNumber, err := e.draw()
	if err != nil {
		return fail(metrics.ResultError, err)
	}

	// Step 8: price the wager and credit any win.
	wonAmount := e.evaluator.EstimatePayout(betString, winningNumber)
	if wonAmount > 0 {
		account.Balance += wonAmount
	}

	if err := uow.Accounts().Save(ctx, account); err != nil {
		return fail(metrics.ResultError, fmt.Errorf("failed to save account %d: %w", userID, err))
	}

	// Step 10: append the wager record in the same unit of work.
	bet := &models.Bet{
		SpinID:           uuid.New(),
		UserID:           userID,
		BetString:        betString,
		BetAmountInCents: stake,
		WinningNumber:    winningNumber,
		WonAmountInCents: wonAmount,
		IPAddress:        ipAddress,
		CreatedAt:        time.Now().UTC(),
	}
	if err := uow.Ledger().Create(ctx, bet); err != nil {
		return fail(metrics.ResultError, fmt.Errorf("failed to write ledger record: %w", err))
	}

	// Steps 11-12: flush balance + ledger atomically, then commit.
	if err := uow.SaveChanges(ctx); err != nil {
		return fail(metrics.ResultError, fmt.Errorf("failed to persist settlement: %w", err))
	}
	if err := uow.Commit(ctx); err != nil {
		return fail(metrics.ResultError, fmt.Errorf("failed to commit settlement: %w", err))
	}
	committed = true

	// Step 9, deliberately reordered after the commit: the pool is
	// best-effort and non-transactional, and moving it past the commit
	// guarantees a rolled-back wager never contributes.
	e.contribute(stake, userID)

	result := metrics.ResultLose
	if wonAmount > 0 {
		result = metrics.ResultWin
	}
	metrics.RecordSettlement(result, started)

	return &models.SpinResult{
		SpinID:           bet.SpinID,
		WinningNumber:    winningNumber,
		WonAmountInCents: wonAmount,
	}, nil
}

// contribute feeds the jackpot pool and broadcasts the new value. A pool
// fault is logged and suppresses the broadcast; it never fails the wager.
// The broadcast itself is fire-and-forget.
func (e *Engine) contribute(stake, userID int64) {
	contribution := jackpot.Contribution(stake, e.contributionBP)
	newValue, err := e.pool.Add(contribution)
	if err != nil {
		e.logger.Error("jackpot pool update failed, skipping broadcast",
			"user_id", userID, "contribution", contribution, "error", err)
		return
	}
	metrics.SetJackpot(newValue)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		msg := websockets.Message{
			Type:    websockets.MessageTypeJackpotUpdate,
			Payload: websockets.JackpotUpdatePayload{AmountInternal: newValue},
		}
		if err := e.publisher.Publish(ctx, msg); err != nil {
			e.logger.Error("failed to publish jackpot update", "error", err)
		}
	}()
}
