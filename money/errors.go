package money

import (
	"errors"
	"fmt"
)

// ErrCurrencyMismatch is returned when two amounts of different currencies
// are combined. Amounts are never converted implicitly.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// CurrencyMismatchError names the two currencies that collided.
type CurrencyMismatchError struct {
	Left  Currency
	Right Currency
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

func (e *CurrencyMismatchError) Unwrap() error {
	return ErrCurrencyMismatch
}
