package storage

import "context"

// UnitOfWork is the transactional scope spanning a balance mutation and a
// ledger insert; the pair is committed or rolled back together.
//
// Contract: Commit and Rollback are no-ops if Begin was never called.
// Mutations made through Accounts and Ledger are staged; SaveChanges flushes
// them inside the transaction without finalizing visibility, Commit
// finalizes. Calling Commit after Rollback (or vice versa) is undefined; a
// unit of work takes exactly one terminal transition.
type UnitOfWork interface {
	// Begin opens the transaction.
	Begin(ctx context.Context) error

	// Accounts returns the account repository bound to this transaction.
	// Reads observe, and may lock against, concurrent transactions on the
	// same rows.
	Accounts() AccountStore

	// Ledger returns the ledger repository bound to this transaction.
	Ledger() LedgerStore

	// SaveChanges flushes all staged mutations.
	SaveChanges(ctx context.Context) error

	// Commit makes the flushed changes visible.
	Commit(ctx context.Context) error

	// Rollback discards everything since Begin.
	Rollback(ctx context.Context) error
}
