package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

func TestParsePolicy_OverlaysDefaults(t *testing.T) {
	// GIVEN: A policy that only lowers the contribution cap
	// WHEN: Parsed
	// THEN: Every other constant comes from DefaultPolicy

	f := factory.NewPolicyFactory()
	p, err := f.ParsePolicy(`{
		"id": "low-cap",
		"name": "Low Cap",
		"social_security": {"max_base": "15000"}
	}`)
	require.NoError(t, err)

	assert.Equal(t, payroll.PolicyID("low-cap"), p.ID)
	assert.Equal(t, "15000", p.SocialSecurity.MaxBase.String())
	assert.Equal(t, "1650", p.SocialSecurity.MinBase.String())
	assert.Equal(t, 30, p.Proration.StandardDivisor)
	assert.Len(t, p.Tax.Brackets, 8)

	calc, err := payroll.NewCalculator(*p)
	require.NoError(t, err)
	assert.Equal(t, "750.00 THB", calc.SocialSecurity(money.FromInt(50000, money.THB)).String())
}

func TestParsePolicy_CustomBrackets(t *testing.T) {
	f := factory.NewPolicyFactory()
	p, err := f.ParsePolicy(`{
		"id": "flat",
		"currency": "USD",
		"tax": {
			"personal_allowance": 0,
			"expense_cap": "0",
			"brackets": [
				{"up_to": "10000", "rate": "0"},
				{"rate": "0.1"}
			]
		}
	}`)
	require.NoError(t, err)
	assert.Equal(t, money.USD, p.Currency)
	require.Len(t, p.Tax.Brackets, 2)
	assert.Nil(t, p.Tax.Brackets[1].UpTo)

	calc, err := payroll.NewCalculator(*p)
	require.NoError(t, err)

	// 2,000 x 12 = 24,000; 14,000 over the zero bracket at 10% = 1,400 / 12
	tax, err := calc.ProgressiveTax(money.FromInt(2000, money.USD), money.Zero(money.USD))
	require.NoError(t, err)
	assert.Equal(t, "116.67 USD", tax.String())
}

func TestParsePolicy_LegacyPreset(t *testing.T) {
	p, err := factory.NewPolicyFactory().ParsePolicy(`{"preset": "legacy"}`)
	require.NoError(t, err)
	assert.Equal(t, payroll.LegacyPolicyID, p.ID)
	assert.Equal(t, 6, p.Tax.AppliedBrackets)
}

func TestParsePolicy_Invalid(t *testing.T) {
	f := factory.NewPolicyFactory()

	_, err := f.ParsePolicy(`{not json`)
	assert.Error(t, err)

	_, err = f.ParsePolicy(`{"preset": "mars"}`)
	assert.ErrorIs(t, err, payroll.ErrInvalidPolicy)

	_, err = f.ParsePolicy(`{"proration": {"standard_divisor": 0}}`)
	assert.ErrorIs(t, err, payroll.ErrInvalidPolicy)

	_, err = f.ParsePolicy(`{"tax": {"brackets": [{"up_to": "100", "rate": "0.1"}]}}`)
	assert.ErrorIs(t, err, payroll.ErrInvalidPolicy)
}

func TestDefaultPolicyJSON_RoundTrip(t *testing.T) {
	p, err := factory.NewPolicyFactory().ParsePolicy(factory.DefaultPolicyJSON())
	require.NoError(t, err)

	want := payroll.DefaultPolicy()
	assert.Equal(t, want.ID, p.ID)
	assert.True(t, want.SocialSecurity.Rate.Equal(p.SocialSecurity.Rate))
	assert.True(t, want.Tax.ExpenseCap.Equal(p.Tax.ExpenseCap))
	require.Len(t, p.Tax.Brackets, len(want.Tax.Brackets))
	for i := range want.Tax.Brackets {
		assert.True(t, want.Tax.Brackets[i].Rate.Equal(p.Tax.Brackets[i].Rate), "bracket %d", i)
	}
}
