package jackpot

import "sync"

// InternalUnitsPerCent is the fixed-point amplification of the pool counter:
// one cent of contribution is stored as 10,000 internal units so fractional
// cent contributions keep full precision without floating point.
const InternalUnitsPerCent = 10_000

// DefaultContributionBasisPoints is the share of every stake fed into the
// pool, in basis points (100 = 1%).
const DefaultContributionBasisPoints = 100

// Contribution converts a stake in cents into the pool's internal unit at the
// given rate. Integer arithmetic only: the multiplication happens before the
// basis-point division, so a 1 cent stake at 1% still contributes exactly
// 100 internal units.
func Contribution(stakeInCents int64, rateBasisPoints int64) int64 {
	return stakeInCents * InternalUnitsPerCent * rateBasisPoints / 10_000
}

// Pool holds the shared jackpot counter. Get never fails on "not yet
// initialized"; that reads as zero. Add performs the whole read-modify-write
// under the pool's guard and returns the new value. Fallible
// implementations must fall back to a zero base when the read inside Add
// faults, and only return an error when the write faults; callers treat an
// Add error as "value not durably stored" and suppress any broadcast of it.
type Pool interface {
	Get() (int64, error)
	Set(value int64) error
	Add(delta int64) (int64, error)
}

// MemoryPool is the in-process Pool implementation. Each instance owns its
// own guard and counter; construct one per process (or per test case) and
// inject it, there is no package-level state.
type MemoryPool struct {
	mu    sync.Mutex
	value int64
}

// NewMemoryPool creates a pool starting at zero.
func NewMemoryPool() *MemoryPool { return &MemoryPool{} }

var _ Pool = (*MemoryPool)(nil)

// Get returns the current pool value.
func (p *MemoryPool) Get() (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, nil
}

// Set overwrites the pool value.
func (p *MemoryPool) Set(value int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = value
	return nil
}

// Add applies delta while holding the guard across the full read-modify-write
// sequence. This is the only thing standing between concurrent settlements
// and lost contributions.
func (p *MemoryPool) Add(delta int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value += delta
	return p.value, nil
}
