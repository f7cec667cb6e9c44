/*
Package money provides the decimal monetary value used by the payroll engine.

PURPOSE:
  Every amount that flows through payroll (salaries, contributions, tax,
  line items, net pay) is a Money. The value is a decimal.Decimal, never a
  binary float, so repeated additions and rate multiplications cannot drift
  by a cent.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A decimal quantity tagged with a currency
  - Currency: ISO-like currency code ("THB", "USD")
  - Round: Half away from zero ("round-half-up"), never banker's rounding

CURRENCY RULES:
  1. Two amounts with different non-empty currencies never combine
     (Add/Sub return ErrCurrencyMismatch).
  2. An amount with an empty currency is untagged: it adopts the currency
     of the other operand. The zero Money is therefore a neutral element,
     and missing fields on incomplete records behave as zero.

USAGE:
  salary := money.MustParse("25000", money.THB)
  sso := salary.Clamp(minBase, maxBase).Mul(rate).Round(0)
  net, err := salary.Sub(sso)

SEE ALSO:
  - errors.go: Currency mismatch errors
  - payroll/calculator.go: The calculations built on Money
*/
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY
// =============================================================================

type Currency string

const (
	THB Currency = "THB"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// =============================================================================
// MONEY - Decimal amount with currency
// =============================================================================

type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

func New(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

func FromInt(amount int64, currency Currency) Money {
	return Money{Amount: decimal.NewFromInt(amount), Currency: currency}
}

// FromString parses a decimal string such as "1650.50".
func FromString(s string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{Amount: d, Currency: currency}, nil
}

// MustParse is FromString for constants and tests. It panics on bad input.
func MustParse(s string, currency Currency) Money {
	m, err := FromString(s, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// =============================================================================
// ARITHMETIC
// =============================================================================

// Add returns m + o. Fails on mismatched currencies.
func (m Money) Add(o Money) (Money, error) {
	cur, err := resolve(m, o)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: cur}, nil
}

// Sub returns m - o. Fails on mismatched currencies.
func (m Money) Sub(o Money) (Money, error) {
	cur, err := resolve(m, o)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: cur}, nil
}

func (m Money) Mul(f decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(f), Currency: m.Currency}
}

func (m Money) Div(f decimal.Decimal) Money {
	return Money{Amount: m.Amount.Div(f), Currency: m.Currency}
}

func (m Money) Neg() Money { return Money{Amount: m.Amount.Neg(), Currency: m.Currency} }

// Round rounds to places fractional digits, half away from zero
// (82.5 -> 83, -82.5 -> -83).
func (m Money) Round(places int32) Money {
	return Money{Amount: m.Amount.Round(places), Currency: m.Currency}
}

// Clamp bounds the amount into [lo, hi]. Bounds are plain decimals in the
// same unit as m.
func (m Money) Clamp(lo, hi decimal.Decimal) Money {
	v := m.Amount
	if v.LessThan(lo) {
		v = lo
	}
	if v.GreaterThan(hi) {
		v = hi
	}
	return Money{Amount: v, Currency: m.Currency}
}

// Min returns the smaller amount. Currencies are not checked.
func (m Money) Min(o Money) Money {
	if o.Amount.LessThan(m.Amount) {
		return o
	}
	return m
}

// Max returns the larger amount. Currencies are not checked.
func (m Money) Max(o Money) Money {
	if o.Amount.GreaterThan(m.Amount) {
		return o
	}
	return m
}

// =============================================================================
// COMPARISON
// =============================================================================

func (m Money) Cmp(o Money) int          { return m.Amount.Cmp(o.Amount) }
func (m Money) Equal(o Money) bool       { return m.Currency == o.Currency && m.Amount.Equal(o.Amount) }
func (m Money) GreaterThan(o Money) bool { return m.Amount.GreaterThan(o.Amount) }
func (m Money) LessThan(o Money) bool    { return m.Amount.LessThan(o.Amount) }
func (m Money) IsZero() bool             { return m.Amount.IsZero() }
func (m Money) IsNegative() bool         { return m.Amount.IsNegative() }
func (m Money) IsPositive() bool         { return m.Amount.IsPositive() }

// WithCurrency retags the amount without converting it.
func (m Money) WithCurrency(c Currency) Money {
	return Money{Amount: m.Amount, Currency: c}
}

// String renders the amount with two fractional digits and the currency code.
func (m Money) String() string {
	if m.Currency == "" {
		return m.Amount.StringFixed(2)
	}
	return m.Amount.StringFixed(2) + " " + string(m.Currency)
}

// Sum adds amounts in order. An empty input yields Zero(currency).
func Sum(currency Currency, amounts ...Money) (Money, error) {
	total := Zero(currency)
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// =============================================================================
// JSON
// =============================================================================

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency,omitempty"`
}

// MarshalJSON encodes the amount as a fixed two-digit decimal string so
// clients never parse money through a float. Stores that need the exact
// value persist Amount directly.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency,omitempty"`
	}{Amount: m.Amount.StringFixed(2), Currency: m.Currency})
}

// UnmarshalJSON accepts the amount as a quoted string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var mj moneyJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	m.Amount = mj.Amount
	m.Currency = mj.Currency
	return nil
}

func resolve(a, b Money) (Currency, error) {
	switch {
	case a.Currency == b.Currency:
		return a.Currency, nil
	case a.Currency == "":
		return b.Currency, nil
	case b.Currency == "":
		return a.Currency, nil
	}
	return "", &CurrencyMismatchError{Left: a.Currency, Right: b.Currency}
}
