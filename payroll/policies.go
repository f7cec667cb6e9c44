/*
policies.go - Pre-built payroll policies

PURPOSE:
  Ready-to-use policy values. These are the constants every payslip in the
  default deployment is computed with.

AVAILABLE POLICIES:
  DefaultPolicy: 5% social security on a 1,650-17,500 base, 30-day
                 pro-ration, eight-bracket progressive tax (0%-35%)
  LegacyPolicy:  Same constants, but the tax ladder stops at the 25%
                 bracket (income above 2,000,000 is not taxed further).
                 Reproduces payslips issued by the earlier system.

CUSTOMIZATION:
  Policies are values; copy and adjust:

    p := payroll.DefaultPolicy()
    p.SocialSecurity.MaxBase = decimal.NewFromInt(15000)
    calc, err := payroll.NewCalculator(p)

SEE ALSO:
  - policy.go: Policy type definition
  - factory/policy.go: JSON-based policy creation
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
)

const (
	DefaultPolicyID PolicyID = "default"
	LegacyPolicyID  PolicyID = "legacy"

	// legacyAppliedBrackets keeps brackets up to and including 25%.
	legacyAppliedBrackets = 6
)

// DefaultPolicy returns the standard policy with the complete tax ladder.
func DefaultPolicy() Policy {
	return Policy{
		ID:       DefaultPolicyID,
		Name:     "Standard Payroll",
		Currency: money.THB,
		SocialSecurity: SocialSecurityPolicy{
			MinBase: decimal.NewFromInt(1650),
			MaxBase: decimal.NewFromInt(17500),
			Rate:    decimal.RequireFromString("0.05"),
			Places:  0,
		},
		Proration: ProrationPolicy{
			StandardDivisor: 30,
			Places:          2,
		},
		Tax: TaxPolicy{
			ExpenseRate:       decimal.RequireFromString("0.5"),
			ExpenseCap:        decimal.NewFromInt(100000),
			PersonalAllowance: decimal.NewFromInt(60000),
			MonthsPerYear:     12,
			Places:            2,
			Brackets:          DefaultBrackets(),
		},
		Overtime: OvertimePolicy{
			HoursPerDay: decimal.NewFromInt(8),
			Multiplier:  decimal.RequireFromString("1.5"),
		},
	}
}

// LegacyPolicy returns DefaultPolicy with the truncated tax ladder.
func LegacyPolicy() Policy {
	p := DefaultPolicy()
	p.ID = LegacyPolicyID
	p.Name = "Legacy Payroll (ladder capped at 25%)"
	p.Tax.AppliedBrackets = legacyAppliedBrackets
	return p
}

// DefaultBrackets is the annual progressive table.
//
//	   150,000   0%
//	   300,000   5%
//	   500,000  10%
//	   750,000  15%
//	 1,000,000  20%
//	 2,000,000  25%
//	 5,000,000  30%
//	       inf  35%
func DefaultBrackets() BracketTable {
	return BracketTable{
		{UpTo: limit(150000), Rate: decimal.Zero},
		{UpTo: limit(300000), Rate: decimal.RequireFromString("0.05")},
		{UpTo: limit(500000), Rate: decimal.RequireFromString("0.10")},
		{UpTo: limit(750000), Rate: decimal.RequireFromString("0.15")},
		{UpTo: limit(1000000), Rate: decimal.RequireFromString("0.20")},
		{UpTo: limit(2000000), Rate: decimal.RequireFromString("0.25")},
		{UpTo: limit(5000000), Rate: decimal.RequireFromString("0.30")},
		{UpTo: nil, Rate: decimal.RequireFromString("0.35")},
	}
}

func limit(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}
