package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

func thb(s string) money.Money {
	return money.MustParse(s, money.THB)
}

// =============================================================================
// SOCIAL SECURITY
// =============================================================================

func TestSocialSecurity_ClampedBase(t *testing.T) {
	tests := []struct {
		name   string
		salary string
		want   string
	}{
		{"zero pays minimum", "0", "83.00 THB"},
		{"negative pays minimum", "-100", "83.00 THB"},
		{"at min base rounds half up", "1650", "83.00 THB"},
		{"just above min base", "1651", "83.00 THB"},
		{"rounds up past .5", "1670", "84.00 THB"},
		{"odd salary", "3333", "167.00 THB"},
		{"mid range", "10000", "500.00 THB"},
		{"at max base", "17500", "875.00 THB"},
		{"above max base is capped", "50000", "875.00 THB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := payroll.CalculateSocialSecurity(thb(tt.salary))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSocialSecurity_BoundedAndMonotonic(t *testing.T) {
	// GIVEN: Salaries from below min base to far above max base
	// THEN: Contribution stays within [83, 875] and never decreases

	prev := decimal.Zero
	for s := int64(-1000); s <= 60000; s += 137 {
		got := payroll.CalculateSocialSecurity(money.FromInt(s, money.THB)).Amount
		assert.True(t, got.GreaterThanOrEqual(decimal.NewFromInt(83)), "salary %d", s)
		assert.True(t, got.LessThanOrEqual(decimal.NewFromInt(875)), "salary %d", s)
		assert.True(t, got.GreaterThanOrEqual(prev), "salary %d", s)
		prev = got
	}
}

func TestSocialSecurity_AdoptsPolicyCurrency(t *testing.T) {
	got := payroll.CalculateSocialSecurity(money.New(decimal.NewFromInt(10000), ""))
	assert.Equal(t, money.THB, got.Currency)
}

// =============================================================================
// PRO-RATION
// =============================================================================

func TestProrate(t *testing.T) {
	tests := []struct {
		name                 string
		salary               string
		start, end, daysInMo int
		want                 string
	}{
		{"joined mid month", "30000", 16, 31, 31, "16000.00 THB"},
		{"left mid month", "25000", 1, 15, 31, "12500.00 THB"},
		{"full 31-day month unchanged", "25000", 1, 31, 31, "25000.00 THB"},
		{"full february unchanged", "25000", 1, 28, 28, "25000.00 THB"},
		{"full leap february unchanged", "25000", 1, 29, 29, "25000.00 THB"},
		{"partial february", "25000", 1, 14, 28, "11666.67 THB"},
		{"30 worked days capped at divisor", "30000", 2, 31, 31, "30000.00 THB"},
		{"single day", "30000", 10, 10, 30, "1000.00 THB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := payroll.Prorate(thb(tt.salary), tt.start, tt.daysInMo, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestProrateFrom_DefaultsEndToLastDay(t *testing.T) {
	got, err := payroll.ProrateFrom(thb("30000"), 16, 31)
	require.NoError(t, err)
	assert.Equal(t, "16000.00 THB", got.String())

	full, err := payroll.ProrateFrom(thb("30000"), 1, 30)
	require.NoError(t, err)
	assert.Equal(t, "30000.00 THB", full.String())
}

func TestProrate_NeverExceedsSalary(t *testing.T) {
	salary := thb("31000")
	for dim := 28; dim <= 31; dim++ {
		for start := 1; start <= dim; start++ {
			for end := start; end <= dim; end++ {
				got, err := payroll.Prorate(salary, start, dim, end)
				require.NoError(t, err)
				assert.False(t, got.GreaterThan(salary), "[%d,%d] of %d", start, end, dim)
			}
		}
	}
}

func TestProrate_MonotonicInDaysWorked(t *testing.T) {
	// GIVEN: A 31-day month, start day fixed at 5
	// THEN: Moving the end day later never lowers pay
	salary := thb("27777")
	prev := decimal.Zero
	for end := 5; end <= 31; end++ {
		got, err := payroll.Prorate(salary, 5, 31, end)
		require.NoError(t, err)
		assert.True(t, got.Amount.GreaterThanOrEqual(prev), "end %d", end)
		prev = got.Amount
	}
}

func TestProrate_InvalidPeriod(t *testing.T) {
	tests := []struct {
		name            string
		start, end, dim int
	}{
		{"start after end", 20, 10, 31},
		{"start before first day", 0, 10, 31},
		{"end after last day", 1, 32, 31},
		{"empty month", 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payroll.Prorate(thb("30000"), tt.start, tt.dim, tt.end)
			require.ErrorIs(t, err, payroll.ErrInvalidPeriod)
			assert.True(t, payroll.IsClientError(err))

			var pe *payroll.PeriodError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.start, pe.StartDay)
		})
	}
}

// =============================================================================
// CALCULATOR CONSTRUCTION
// =============================================================================

func TestNewCalculator_RejectsInvalidPolicy(t *testing.T) {
	p := payroll.DefaultPolicy()
	p.Proration.StandardDivisor = 0

	_, err := payroll.NewCalculator(p)
	require.ErrorIs(t, err, payroll.ErrInvalidPolicy)

	var pe *payroll.PolicyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "proration.standard_divisor", pe.Field)
}

func TestNewCalculator_CustomPolicy(t *testing.T) {
	// GIVEN: A policy with a lower contribution cap
	p := payroll.DefaultPolicy()
	p.SocialSecurity.MaxBase = decimal.NewFromInt(15000)

	calc, err := payroll.NewCalculator(p)
	require.NoError(t, err)

	// THEN: The cap follows the policy, the default is untouched
	assert.Equal(t, "750.00 THB", calc.SocialSecurity(thb("50000")).String())
	assert.Equal(t, "875.00 THB", payroll.Default().SocialSecurity(thb("50000")).String())
}
