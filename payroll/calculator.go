/*
Package payroll implements the payroll calculation engine and payslip
generation.

PURPOSE:
  Computes the monetary lines of a payslip: social-security contribution,
  partial-month salary, progressive income-tax withholding and net pay.
  Every calculation is a pure function of its inputs and the Policy, in
  decimal arithmetic with explicit half-up rounding.

KEY CONCEPTS IN THIS FILE (calculator.go):
  - Calculator: Binds a Policy to the calculations
  - SocialSecurity: Capped-base percentage contribution
  - Prorate: Partial-month salary on a 30-day divisor

COMPOSITION:
  SocialSecurity ──┐
  Prorate ─────────┼──> ProgressiveTax ──> Net
  OvertimePay ─────┘

  Net sums arbitrary income and deduction lines including the outputs of
  the other calculations. Service.Generate wires them together per payslip.

CONCURRENCY:
  A Calculator holds no mutable state. Share one across goroutines.

USAGE:
  calc, err := payroll.NewCalculator(payroll.DefaultPolicy())
  salary, err := calc.Prorate(base, payroll.CalendarPeriod{StartDay: 16, EndDay: 31, DaysInMonth: 31})
  sso := calc.SocialSecurity(salary)
  tax, err := calc.ProgressiveTax(salary, sso)

SEE ALSO:
  - tax.go: Bracket ladder and tax assessment
  - net.go: Net aggregation
  - service.go: Payslip generation and persistence
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
)

// =============================================================================
// CALCULATOR
// =============================================================================

type Calculator struct {
	policy Policy
}

// NewCalculator validates p and binds it to a Calculator.
func NewCalculator(p Policy) (*Calculator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{policy: p}, nil
}

// Policy returns a copy of the bound policy.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// tag fills in the policy currency on amounts that carry none.
func (c *Calculator) tag(m money.Money) money.Money {
	if m.Currency == "" {
		m.Currency = c.policy.Currency
	}
	return m
}

// =============================================================================
// SOCIAL SECURITY
// =============================================================================

// SocialSecurity clamps salary into [MinBase, MaxBase], applies the rate and
// rounds half-up. Zero and negative salaries clamp to MinBase and pay the
// minimum contribution.
func (c *Calculator) SocialSecurity(salary money.Money) money.Money {
	ss := c.policy.SocialSecurity
	return c.tag(salary).
		Clamp(ss.MinBase, ss.MaxBase).
		Mul(ss.Rate).
		Round(ss.Places)
}

// =============================================================================
// PRO-RATION
// =============================================================================

// Prorate returns the salary earned over period.
//
// A full calendar month pays salary unchanged whatever the month's length,
// so February is never underpaid. Otherwise the worked days, capped at the
// standard divisor, are paid at salary/divisor per day.
func (c *Calculator) Prorate(salary money.Money, period CalendarPeriod) (money.Money, error) {
	if err := period.Validate(); err != nil {
		return money.Money{}, err
	}
	salary = c.tag(salary)
	if period.IsFullMonth() {
		return salary, nil
	}

	divisor := c.policy.Proration.StandardDivisor
	days := period.DaysWorked()
	if days > divisor {
		days = divisor
	}

	// salary*days/divisor keeps the product exact before the single division.
	return salary.
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(divisor))).
		Round(c.policy.Proration.Places), nil
}

// =============================================================================
// DEFAULT CALCULATOR - Package-level helpers on DefaultPolicy
// =============================================================================

var defaultCalculator = &Calculator{policy: DefaultPolicy()}

// Default returns the calculator bound to DefaultPolicy.
func Default() *Calculator {
	return defaultCalculator
}

// CalculateSocialSecurity computes the contribution under DefaultPolicy.
func CalculateSocialSecurity(salary money.Money) money.Money {
	return defaultCalculator.SocialSecurity(salary)
}

// Prorate computes partial-month salary for [startDay, endDay] under
// DefaultPolicy.
func Prorate(salary money.Money, startDay, daysInMonth, endDay int) (money.Money, error) {
	return defaultCalculator.Prorate(salary, CalendarPeriod{
		StartDay:    startDay,
		EndDay:      endDay,
		DaysInMonth: daysInMonth,
	})
}

// ProrateFrom is Prorate with endDay defaulting to the last day of the month.
func ProrateFrom(salary money.Money, startDay, daysInMonth int) (money.Money, error) {
	return Prorate(salary, startDay, daysInMonth, daysInMonth)
}

// CalculateProgressiveTax computes monthly withholding under DefaultPolicy.
func CalculateProgressiveTax(monthlyIncome, monthlySocialSecurity money.Money) (money.Money, error) {
	return defaultCalculator.ProgressiveTax(monthlyIncome, monthlySocialSecurity)
}

// CalculateNet aggregates items under DefaultPolicy.
func CalculateNet(items Items) (Breakdown, error) {
	return defaultCalculator.Net(items)
}
