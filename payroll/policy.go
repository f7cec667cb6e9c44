/*
policy.go - Payroll policy constants

PURPOSE:
  A Policy holds every constant the calculations depend on: contribution
  bases and rate, the pro-ration divisor, tax deductions and the bracket
  table, overtime factors. The algorithms read nothing else, so a country
  or company variant is a different Policy value, not a code change.

STRUCTURE:
  Policy
    ├── SocialSecurity  capped-base contribution (min/max base, rate)
    ├── Proration       standard divisor for partial months
    ├── Tax             annualization, deductions, bracket ladder
    └── Overtime        hours per day, OT multiplier

IMMUTABILITY:
  Policies are plain values. A Calculator copies its Policy at construction
  and never mutates it, so one Calculator is safe for concurrent use.

SEE ALSO:
  - policies.go: Preset policies (DefaultPolicy, LegacyPolicy)
  - tax.go: BracketTable
  - factory/policy.go: JSON <-> Policy conversion
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
)

type PolicyID string

// =============================================================================
// POLICY
// =============================================================================

type Policy struct {
	ID       PolicyID
	Name     string
	Currency money.Currency

	SocialSecurity SocialSecurityPolicy
	Proration      ProrationPolicy
	Tax            TaxPolicy
	Overtime       OvertimePolicy
}

// SocialSecurityPolicy defines a capped-base percentage contribution.
type SocialSecurityPolicy struct {
	MinBase decimal.Decimal
	MaxBase decimal.Decimal
	Rate    decimal.Decimal
	Places  int32 // fractional digits kept after rounding
}

// ProrationPolicy defines partial-month pay.
type ProrationPolicy struct {
	StandardDivisor int // days a monthly salary is divided by
	Places          int32
}

// TaxPolicy defines monthly withholding from annualized income.
type TaxPolicy struct {
	ExpenseRate       decimal.Decimal // share of annual income deducted as expenses
	ExpenseCap        decimal.Decimal // upper bound of the expense deduction
	PersonalAllowance decimal.Decimal // fixed annual allowance
	MonthsPerYear     int
	Places            int32
	Brackets          BracketTable

	// AppliedBrackets limits how many brackets take part in the ladder.
	// Zero applies all of them.
	AppliedBrackets int
}

// OvertimePolicy defines the hourly overtime rate derived from a monthly salary.
type OvertimePolicy struct {
	HoursPerDay decimal.Decimal
	Multiplier  decimal.Decimal
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks that the policy can drive the calculations.
func (p Policy) Validate() error {
	ss := p.SocialSecurity
	if ss.MinBase.IsNegative() {
		return &PolicyError{"social_security.min_base", "must not be negative"}
	}
	if ss.MaxBase.LessThan(ss.MinBase) {
		return &PolicyError{"social_security.max_base", "must be >= min_base"}
	}
	if ss.Rate.IsNegative() {
		return &PolicyError{"social_security.rate", "must not be negative"}
	}
	if ss.Places < 0 {
		return &PolicyError{"social_security.places", "must not be negative"}
	}

	if p.Proration.StandardDivisor <= 0 {
		return &PolicyError{"proration.standard_divisor", "must be positive"}
	}
	if p.Proration.Places < 0 {
		return &PolicyError{"proration.places", "must not be negative"}
	}

	tx := p.Tax
	if tx.ExpenseRate.IsNegative() || tx.ExpenseCap.IsNegative() || tx.PersonalAllowance.IsNegative() {
		return &PolicyError{"tax", "deductions must not be negative"}
	}
	if tx.MonthsPerYear <= 0 {
		return &PolicyError{"tax.months_per_year", "must be positive"}
	}
	if tx.Places < 0 {
		return &PolicyError{"tax.places", "must not be negative"}
	}
	if tx.AppliedBrackets < 0 || tx.AppliedBrackets > len(tx.Brackets) {
		return &PolicyError{"tax.applied_brackets", "out of range"}
	}
	if err := tx.Brackets.Validate(); err != nil {
		return err
	}

	if !p.Overtime.HoursPerDay.IsPositive() {
		return &PolicyError{"overtime.hours_per_day", "must be positive"}
	}
	if p.Overtime.Multiplier.IsNegative() {
		return &PolicyError{"overtime.multiplier", "must not be negative"}
	}
	return nil
}

// ladder returns the brackets actually applied by the tax calculation.
func (t TaxPolicy) ladder() BracketTable {
	if t.AppliedBrackets == 0 {
		return t.Brackets
	}
	return t.Brackets.Truncate(t.AppliedBrackets)
}
