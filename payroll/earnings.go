package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
)

// OvertimePay converts accumulated overtime hours into pay:
//
//	base / divisor / hoursPerDay * multiplier * hours
//
// rounded half-up to the pro-ration places. Non-positive hours pay nothing.
func (c *Calculator) OvertimePay(baseSalary money.Money, hours decimal.Decimal) money.Money {
	base := c.tag(baseSalary)
	if !hours.IsPositive() {
		return money.Zero(base.Currency)
	}
	ot := c.policy.Overtime
	perHour := decimal.NewFromInt(int64(c.policy.Proration.StandardDivisor)).Mul(ot.HoursPerDay)
	return base.
		Mul(ot.Multiplier).
		Mul(hours).
		Div(perHour).
		Round(c.policy.Proration.Places)
}

// AbsenceDeduction is the daily rate (base / divisor) times absent days.
func (c *Calculator) AbsenceDeduction(baseSalary money.Money, days int) money.Money {
	base := c.tag(baseSalary)
	if days <= 0 {
		return money.Zero(base.Currency)
	}
	return base.
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(c.policy.Proration.StandardDivisor))).
		Round(c.policy.Proration.Places)
}
