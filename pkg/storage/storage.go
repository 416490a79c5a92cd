package storage

// Store defines the root interface for the data layer. It composes the
// read-side repositories with the ability to open a unit of work; components
// should depend on the more granular interfaces where they can.
type Store interface {
	AccountStore
	LedgerStore

	// NewUnitOfWork creates a fresh, unstarted unit of work. The handle is
	// owned exclusively by the caller and must not be shared across requests.
	NewUnitOfWork() UnitOfWork
}
