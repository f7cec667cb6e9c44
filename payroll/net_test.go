package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

func TestCalculateNet_Basic(t *testing.T) {
	// GIVEN: 25,000 salary, 1,000 incentive, 450 late/absence deduction, 875 SSO, no tax
	bd, err := payroll.CalculateNet(payroll.Items{
		Salary:        thb("25000"),
		OT:            thb("0"),
		Incentive:     thb("1000"),
		Deductions:    thb("450"),
		SSO:           thb("875"),
		Tax:           thb("0"),
		CustomIncomes: []payroll.LineItem{},
		CustomDeducts: []payroll.LineItem{},
	})
	require.NoError(t, err)

	// THEN: 25,000 + 1,000 - 450 - 875
	assert.Equal(t, "26000.00 THB", bd.TotalIncome.String())
	assert.Equal(t, "1325.00 THB", bd.TotalDeduct.String())
	assert.Equal(t, "24675.00 THB", bd.Net.String())
}

func TestCalculateNet_TaxCountsAsDeduction(t *testing.T) {
	bd, err := payroll.CalculateNet(payroll.Items{
		Salary:    thb("25000"),
		Incentive: thb("1000"),
		Tax:       thb("450"),
		SSO:       thb("875"),
	})
	require.NoError(t, err)
	assert.Equal(t, "24675.00 THB", bd.Net.String())
}

func TestCalculateNet_AllZero(t *testing.T) {
	// GIVEN: A record with every amount missing
	// THEN: Net is zero in the policy currency, not an error

	bd, err := payroll.CalculateNet(payroll.Items{})
	require.NoError(t, err)
	assert.True(t, bd.Net.IsZero())
	assert.Equal(t, money.THB, bd.Net.Currency)
}

func TestCalculateNet_CustomLines(t *testing.T) {
	bd, err := payroll.CalculateNet(payroll.Items{
		Salary: thb("30000"),
		CustomIncomes: []payroll.LineItem{
			{Label: "Housing", Amount: thb("2000")},
			{Label: "Phone", Amount: thb("500.50")},
		},
		SSO: thb("875"),
		CustomDeducts: []payroll.LineItem{
			{Label: "Loan", Amount: thb("1200.25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "32500.50 THB", bd.TotalIncome.String())
	assert.Equal(t, "2075.25 THB", bd.TotalDeduct.String())
	assert.Equal(t, "30425.25 THB", bd.Net.String())
}

func TestCalculateNet_CanBeNegative(t *testing.T) {
	bd, err := payroll.CalculateNet(payroll.Items{
		Salary:     thb("1000"),
		Deductions: thb("1500"),
	})
	require.NoError(t, err)
	assert.Equal(t, "-500.00 THB", bd.Net.String())
}

func TestCalculateNet_RoundsHalfUp(t *testing.T) {
	bd, err := payroll.CalculateNet(payroll.Items{
		Salary: thb("1000.005"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.01", bd.Net.Amount.String())
}

func TestCalculateNet_CurrencyMismatch(t *testing.T) {
	_, err := payroll.CalculateNet(payroll.Items{
		Salary:    thb("25000"),
		Incentive: money.FromInt(100, money.USD),
	})
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestItems_LinesOrderAndKinds(t *testing.T) {
	lines := payroll.Items{
		Salary:        thb("1"),
		CustomIncomes: []payroll.LineItem{{Label: "Bonus", Amount: thb("2")}},
		CustomDeducts: []payroll.LineItem{{Label: "Loan", Amount: thb("3")}},
	}.Lines()

	require.Len(t, lines, 8)
	assert.Equal(t, "Salary", lines[0].Label)
	assert.Equal(t, "Bonus", lines[3].Label)
	assert.Equal(t, payroll.KindIncome, lines[3].Kind)
	assert.Equal(t, "Deductions", lines[4].Label)
	assert.Equal(t, "Loan", lines[7].Label)
	assert.Equal(t, payroll.KindDeduction, lines[7].Kind)
}
