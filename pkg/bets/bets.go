package bets

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSpec is returned when a wager specification fails validation.
var ErrInvalidSpec = errors.New("invalid bet specification")

// Evaluator validates a wager specification and prices it against a winning
// number. Implementations are pure and hold no state.
type Evaluator interface {
	// Validate checks the specification structurally and returns the total
	// stake in cents. Any error wraps ErrInvalidSpec.
	Validate(spec string) (int64, error)

	// EstimatePayout returns the total won amount in cents for the given
	// winning number, zero when the wager loses. Callers must only pass a
	// specification that previously passed Validate.
	EstimatePayout(spec string, winningNumber int) int64
}

// A wager specification is a JSON array of bet items, e.g.
//
//	[{"T":"v","I":20,"C":1,"K":100}]
//
// where T is the bet kind, I the board index, C the chip count and K the
// chip value in cents. The stake of an item is C*K.
type betItem struct {
	Kind  string `json:"T"`
	Index int    `json:"I"`
	Chips int64  `json:"C"`
	Value int64  `json:"K"`
}

// Payout multipliers are stake-inclusive: a won straight bet returns 36x the
// item stake to the balance, matching a 35:1 table plus the stake itself.
var multipliers = map[string]int64{
	"v": 36, // straight, I = 0..36
	"t": 12, // street, I = 0..11 covering 3I+1 .. 3I+3
	"d": 3,  // dozen, I = 0..2
	"c": 3,  // column, I = 0..2
	"r": 2,  // red
	"b": 2,  // black
	"e": 2,  // even
	"o": 2,  // odd
	"l": 2,  // low 1-18
	"h": 2,  // high 19-36
}

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// Checker is the production Evaluator for the single-zero roulette table.
type Checker struct{}

// NewChecker creates a new Checker.
func NewChecker() *Checker { return &Checker{} }

var _ Evaluator = (*Checker)(nil)

// Validate parses the specification and returns the total stake in cents.
func (c *Checker) Validate(spec string) (int64, error) {
	items, err := parse(spec)
	if err != nil {
		return 0, err
	}

	var total int64
	for i, item := range items {
		if err := item.validate(); err != nil {
			return 0, fmt.Errorf("%w: item %d: %v", ErrInvalidSpec, i, err)
		}
		stake := item.Chips * item.Value
		if total > math.MaxInt64-stake {
			return 0, fmt.Errorf("%w: total stake overflows", ErrInvalidSpec)
		}
		total += stake
	}
	return total, nil
}

// EstimatePayout prices the specification against the winning number.
// A specification that does not parse prices to zero.
func (c *Checker) EstimatePayout(spec string, winningNumber int) int64 {
	items, err := parse(spec)
	if err != nil {
		return 0
	}

	var won int64
	for _, item := range items {
		if item.validate() != nil {
			continue
		}
		if item.covers(winningNumber) {
			won += item.Chips * item.Value * multipliers[item.Kind]
		}
	}
	return won
}

func parse(spec string) ([]betItem, error) {
	dec := json.NewDecoder(strings.NewReader(spec))
	dec.DisallowUnknownFields()

	var items []betItem
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after bet array", ErrInvalidSpec)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty bet array", ErrInvalidSpec)
	}
	return items, nil
}

func (b betItem) validate() error {
	if _, ok := multipliers[b.Kind]; !ok {
		return fmt.Errorf("unknown bet kind %q", b.Kind)
	}
	if b.Chips <= 0 {
		return fmt.Errorf("chip count must be positive, got %d", b.Chips)
	}
	if b.Value <= 0 {
		return fmt.Errorf("chip value must be positive, got %d", b.Value)
	}
	if b.Chips > math.MaxInt64/b.Value {
		return errors.New("item stake overflows")
	}

	switch b.Kind {
	case "v":
		if b.Index < 0 || b.Index > 36 {
			return fmt.Errorf("straight index out of range: %d", b.Index)
		}
	case "t":
		if b.Index < 0 || b.Index > 11 {
			return fmt.Errorf("street index out of range: %d", b.Index)
		}
	case "d", "c":
		if b.Index < 0 || b.Index > 2 {
			return fmt.Errorf("dozen/column index out of range: %d", b.Index)
		}
	}
	return nil
}

func (b betItem) covers(n int) bool {
	switch b.Kind {
	case "v":
		return n == b.Index
	case "t":
		return n >= 3*b.Index+1 && n <= 3*b.Index+3
	case "d":
		return n >= 1 && (n-1)/12 == b.Index
	case "c":
		return n >= 1 && (n-1)%3 == b.Index
	case "r":
		return redNumbers[n]
	case "b":
		return n != 0 && !redNumbers[n]
	case "e":
		return n != 0 && n%2 == 0
	case "o":
		return n%2 == 1
	case "l":
		return n >= 1 && n <= 18
	case "h":
		return n >= 19 && n <= 36
	}
	return false
}
