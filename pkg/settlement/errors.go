package settlement

import "errors"

// ErrInvalidBet is returned when the wager specification fails validation.
// Terminal; retrying the same specification cannot succeed.
var ErrInvalidBet = errors.New("invalid bet")

// ErrUserNotFound is returned when the wagering user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrInsufficientBalance is returned when the account cannot cover the
// stake. Terminal but user-correctable.
var ErrInsufficientBalance = errors.New("insufficient balance")
