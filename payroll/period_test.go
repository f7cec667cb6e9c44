package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

func TestPayPeriod_CalendarDefaults(t *testing.T) {
	cp := payroll.FullMonth(2024, time.February).Calendar()
	assert.Equal(t, payroll.CalendarPeriod{StartDay: 1, EndDay: 29, DaysInMonth: 29}, cp)
	assert.True(t, cp.IsFullMonth())

	partial := payroll.PayPeriod{Year: 2025, Month: time.March, StartDay: 16}
	cp = partial.Calendar()
	assert.Equal(t, 31, cp.EndDay)
	assert.Equal(t, 16, cp.DaysWorked())
	assert.False(t, cp.IsFullMonth())
}

func TestPayPeriod_KeyAndString(t *testing.T) {
	p := payroll.PayPeriod{Year: 2025, Month: time.March, StartDay: 16}
	assert.Equal(t, "2025-03", p.Key())
	assert.Equal(t, "[2025-03-16, 2025-03-31]", p.String())
}

func TestPayPeriod_Validate(t *testing.T) {
	assert.NoError(t, payroll.FullMonth(2025, time.December).Validate())

	bad := []payroll.PayPeriod{
		{Year: 2025, Month: 0},
		{Year: 2025, Month: 13},
		{Year: 0, Month: time.January},
		{Year: 2025, Month: time.February, EndDay: 30},
		{Year: 2025, Month: time.March, StartDay: 20, EndDay: 10},
	}
	for _, p := range bad {
		assert.ErrorIs(t, p.Validate(), payroll.ErrInvalidPeriod, "%+v", p)
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, payroll.DaysIn(2025, time.January))
	assert.Equal(t, 28, payroll.DaysIn(2025, time.February))
	assert.Equal(t, 29, payroll.DaysIn(2024, time.February))
	assert.Equal(t, 30, payroll.DaysIn(2025, time.April))
	assert.Equal(t, 31, payroll.DaysIn(2025, time.December))
}

// =============================================================================
// POLICY VALIDATION
// =============================================================================

func TestPolicy_PresetsValid(t *testing.T) {
	require.NoError(t, payroll.DefaultPolicy().Validate())
	require.NoError(t, payroll.LegacyPolicy().Validate())
	assert.Equal(t, payroll.LegacyPolicyID, payroll.LegacyPolicy().ID)
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*payroll.Policy)
		field  string
	}{
		{"max below min", func(p *payroll.Policy) { p.SocialSecurity.MaxBase = decimal.NewFromInt(1000) }, "social_security.max_base"},
		{"negative rate", func(p *payroll.Policy) { p.SocialSecurity.Rate = decimal.NewFromInt(-1) }, "social_security.rate"},
		{"zero months", func(p *payroll.Policy) { p.Tax.MonthsPerYear = 0 }, "tax.months_per_year"},
		{"too many applied brackets", func(p *payroll.Policy) { p.Tax.AppliedBrackets = 9 }, "tax.applied_brackets"},
		{"zero hours per day", func(p *payroll.Policy) { p.Overtime.HoursPerDay = decimal.Zero }, "overtime.hours_per_day"},
		{"empty brackets", func(p *payroll.Policy) { p.Tax.Brackets = nil }, "tax.brackets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payroll.DefaultPolicy()
			tt.mutate(&p)

			var pe *payroll.PolicyError
			require.ErrorAs(t, p.Validate(), &pe)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}
