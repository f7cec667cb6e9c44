package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
)

// =============================================================================
// BRACKET TABLE - Progressive marginal rates
// =============================================================================

// Bracket taxes the slice of income between the previous bracket's UpTo and
// its own UpTo at Rate. A nil UpTo is unbounded.
type Bracket struct {
	UpTo *decimal.Decimal
	Rate decimal.Decimal
}

// BracketTable is ordered by UpTo, strictly increasing, and covers [0, inf).
type BracketTable []Bracket

// Validate checks the progressive structure: strictly increasing limits,
// non-decreasing rates, only the last bracket unbounded.
func (t BracketTable) Validate() error {
	if len(t) == 0 {
		return &PolicyError{"tax.brackets", "must not be empty"}
	}
	prev := decimal.Zero
	prevRate := decimal.Zero
	for i, b := range t {
		if b.Rate.IsNegative() {
			return &PolicyError{"tax.brackets", "rate must not be negative"}
		}
		if b.Rate.LessThan(prevRate) {
			return &PolicyError{"tax.brackets", "rates must be non-decreasing"}
		}
		prevRate = b.Rate

		last := i == len(t)-1
		if b.UpTo == nil {
			if !last {
				return &PolicyError{"tax.brackets", "only the last bracket may be unbounded"}
			}
			continue
		}
		if last {
			return &PolicyError{"tax.brackets", "last bracket must be unbounded"}
		}
		if !b.UpTo.GreaterThan(prev) {
			return &PolicyError{"tax.brackets", "limits must be strictly increasing"}
		}
		prev = *b.UpTo
	}
	return nil
}

// Truncate returns the first n brackets. Income above the last kept limit
// is left untaxed.
func (t BracketTable) Truncate(n int) BracketTable {
	if n >= len(t) {
		return t
	}
	return t[:n]
}

// AnnualTax walks the ladder and sums each bracket's marginal portion.
// At an exact bracket limit the next bracket contributes nothing.
func (t BracketTable) AnnualTax(netTaxable decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	prev := decimal.Zero
	for _, b := range t {
		if !netTaxable.GreaterThan(prev) {
			break
		}
		upper := netTaxable
		if b.UpTo != nil && b.UpTo.LessThan(netTaxable) {
			upper = *b.UpTo
		}
		total = total.Add(upper.Sub(prev).Mul(b.Rate))
		if b.UpTo == nil {
			break
		}
		prev = *b.UpTo
	}
	return total
}

// =============================================================================
// TAX ASSESSMENT - Monthly withholding with its audit trail
// =============================================================================

// TaxAssessment records every intermediate of a withholding calculation.
// All annual figures are unrounded.
type TaxAssessment struct {
	AnnualIncome decimal.Decimal
	Expenses     decimal.Decimal
	Allowances   decimal.Decimal
	NetTaxable   decimal.Decimal
	AnnualTax    decimal.Decimal
	Monthly      money.Money
}

// AssessTax annualizes monthly income, applies the expense and allowance
// deductions and the bracket ladder, and returns the monthly withholding.
func (c *Calculator) AssessTax(monthlyIncome, monthlySocialSecurity money.Money) (TaxAssessment, error) {
	if _, err := monthlyIncome.Add(monthlySocialSecurity); err != nil {
		return TaxAssessment{}, err
	}
	tp := c.policy.Tax
	months := decimal.NewFromInt(int64(tp.MonthsPerYear))

	annual := monthlyIncome.Amount.Mul(months)
	expenses := decimal.Min(annual.Mul(tp.ExpenseRate), tp.ExpenseCap)
	allowances := tp.PersonalAllowance.Add(monthlySocialSecurity.Amount.Mul(months))
	netTaxable := decimal.Max(annual.Sub(expenses).Sub(allowances), decimal.Zero)
	annualTax := tp.ladder().AnnualTax(netTaxable)

	cur := monthlyIncome.Currency
	if cur == "" {
		cur = monthlySocialSecurity.Currency
	}
	monthly := c.tag(money.New(annualTax, cur)).Div(months).Round(tp.Places)

	return TaxAssessment{
		AnnualIncome: annual,
		Expenses:     expenses,
		Allowances:   allowances,
		NetTaxable:   netTaxable,
		AnnualTax:    annualTax,
		Monthly:      monthly,
	}, nil
}

// ProgressiveTax returns the monthly withholding for monthlyIncome given the
// employee's monthly social-security contribution.
func (c *Calculator) ProgressiveTax(monthlyIncome, monthlySocialSecurity money.Money) (money.Money, error) {
	a, err := c.AssessTax(monthlyIncome, monthlySocialSecurity)
	if err != nil {
		return money.Money{}, err
	}
	return a.Monthly, nil
}
