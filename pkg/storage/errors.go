package storage

import "errors"

// ErrNoTransaction is returned when a unit of work's repositories or
// SaveChanges are used before Begin.
var ErrNoTransaction = errors.New("unit of work has not been started")
