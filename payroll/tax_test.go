package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// BRACKET LADDER
// =============================================================================

func TestAnnualTax_Ladder(t *testing.T) {
	table := payroll.DefaultBrackets()
	tests := []struct {
		net  int64
		want string
	}{
		{0, "0"},
		{150000, "0"},
		{150001, "0.05"},
		{300000, "7500"},
		{500000, "27500"},
		{750000, "65000"},
		{1000000, "115000"},
		{2000000, "365000"},
		{5000000, "1265000"},
		{5829500, "1555325"},
	}
	for _, tt := range tests {
		got := table.AnnualTax(decimal.NewFromInt(tt.net))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "net %d: got %s", tt.net, got)
	}
}

func TestAnnualTax_Monotonic(t *testing.T) {
	table := payroll.DefaultBrackets()
	prev := decimal.Zero
	for n := int64(0); n <= 6000000; n += 12345 {
		got := table.AnnualTax(decimal.NewFromInt(n))
		assert.True(t, got.GreaterThanOrEqual(prev), "net %d", n)
		prev = got
	}
}

func TestBracketTable_Validate(t *testing.T) {
	lim := func(n int64) *decimal.Decimal { d := decimal.NewFromInt(n); return &d }
	r := decimal.RequireFromString

	assert.NoError(t, payroll.DefaultBrackets().Validate())

	tests := []struct {
		name  string
		table payroll.BracketTable
	}{
		{"empty", payroll.BracketTable{}},
		{"bounded last", payroll.BracketTable{{UpTo: lim(100), Rate: r("0.1")}}},
		{"unbounded middle", payroll.BracketTable{{UpTo: nil, Rate: r("0.1")}, {UpTo: nil, Rate: r("0.2")}}},
		{"decreasing limits", payroll.BracketTable{{UpTo: lim(200), Rate: r("0")}, {UpTo: lim(100), Rate: r("0.1")}, {Rate: r("0.2")}}},
		{"decreasing rates", payroll.BracketTable{{UpTo: lim(100), Rate: r("0.2")}, {Rate: r("0.1")}}},
		{"negative rate", payroll.BracketTable{{Rate: r("-0.1")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.table.Validate(), payroll.ErrInvalidPolicy)
		})
	}
}

// =============================================================================
// MONTHLY WITHHOLDING
// =============================================================================

func TestProgressiveTax_Default(t *testing.T) {
	tests := []struct {
		name   string
		income string
		sso    string
		want   string
	}{
		{"below first taxable bracket", "25000", "875", "0.00 THB"},
		{"negative net taxable clamps to zero", "5000", "250", "0.00 THB"},
		{"second and third bracket", "50000", "875", "1704.17 THB"},
		{"net taxable at exact limit", "55000", "0", "2291.67 THB"},
		{"same limit via sso allowance", "55875", "875", "2291.67 THB"},
		{"exactly two million", "180875", "875", "30416.67 THB"},
		{"thirty percent bracket", "300000", "875", "66154.17 THB"},
		{"top bracket", "500000", "875", "129610.42 THB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := payroll.CalculateProgressiveTax(thb(tt.income), thb(tt.sso))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestAssessTax_AuditTrail(t *testing.T) {
	a, err := payroll.Default().AssessTax(thb("50000"), thb("875"))
	require.NoError(t, err)

	assert.Equal(t, "600000", a.AnnualIncome.String())
	assert.Equal(t, "100000", a.Expenses.String())
	assert.Equal(t, "70500", a.Allowances.String())
	assert.Equal(t, "429500", a.NetTaxable.String())
	assert.Equal(t, "20450", a.AnnualTax.String())
	assert.Equal(t, "1704.17 THB", a.Monthly.String())
}

func TestAssessTax_ExpensesBelowCap(t *testing.T) {
	// 10,000 a month: half of 120,000 is 60,000, under the 100,000 cap
	a, err := payroll.Default().AssessTax(thb("10000"), thb("500"))
	require.NoError(t, err)
	assert.Equal(t, "60000", a.Expenses.String())
	assert.True(t, a.NetTaxable.IsZero())
}

func TestProgressiveTax_LegacyLadderStopsAt25Percent(t *testing.T) {
	// GIVEN: Income whose net taxable (3,429,500) reaches the 30% bracket
	// WHEN: Computed under the full and the legacy ladder
	// THEN: Legacy taxes nothing above 2,000,000, the full ladder does

	legacy, err := payroll.NewCalculator(payroll.LegacyPolicy())
	require.NoError(t, err)

	full, err := payroll.CalculateProgressiveTax(thb("300000"), thb("875"))
	require.NoError(t, err)
	capped, err := legacy.ProgressiveTax(thb("300000"), thb("875"))
	require.NoError(t, err)

	assert.Equal(t, "66154.17 THB", full.String())
	assert.Equal(t, "30416.67 THB", capped.String())

	// Below 2,000,000 net taxable both ladders agree
	a, err := payroll.CalculateProgressiveTax(thb("50000"), thb("875"))
	require.NoError(t, err)
	b, err := legacy.ProgressiveTax(thb("50000"), thb("875"))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestProgressiveTax_CurrencyMismatch(t *testing.T) {
	_, err := payroll.CalculateProgressiveTax(thb("50000"), money.FromInt(875, money.USD))
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)
	assert.True(t, payroll.IsClientError(err))
}

func TestProgressiveTax_MonotonicInIncome(t *testing.T) {
	prev := decimal.Zero
	for m := int64(0); m <= 600000; m += 2500 {
		got, err := payroll.CalculateProgressiveTax(money.FromInt(m, money.THB), thb("875"))
		require.NoError(t, err)
		assert.True(t, got.Amount.GreaterThanOrEqual(prev), "income %d", m)
		prev = got.Amount
	}
}
