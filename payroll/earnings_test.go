package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/payroll-engine/payroll"
)

func TestOvertimePay(t *testing.T) {
	calc := payroll.Default()

	// 30,000 / 30 days / 8 hours = 125/h, x1.5 = 187.5/h
	assert.Equal(t, "1875.00 THB", calc.OvertimePay(thb("30000"), decimal.NewFromInt(10)).String())
	assert.Equal(t, "93.75 THB", calc.OvertimePay(thb("30000"), decimal.RequireFromString("0.5")).String())
	assert.True(t, calc.OvertimePay(thb("30000"), decimal.Zero).IsZero())
	assert.True(t, calc.OvertimePay(thb("30000"), decimal.NewFromInt(-3)).IsZero())
}

func TestAbsenceDeduction(t *testing.T) {
	calc := payroll.Default()

	assert.Equal(t, "2000.00 THB", calc.AbsenceDeduction(thb("30000"), 2).String())
	assert.Equal(t, "833.33 THB", calc.AbsenceDeduction(thb("25000"), 1).String())
	assert.True(t, calc.AbsenceDeduction(thb("30000"), 0).IsZero())
}
