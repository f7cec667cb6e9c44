package money_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/money"
)

func thb(s string) money.Money { return money.MustParse(s, money.THB) }

func TestRound_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"82.5", 0, "83"},
		{"83.5", 0, "84"},
		{"-82.5", 0, "-83"},
		{"82.49", 0, "82"},
		{"1704.165", 2, "1704.17"},
		{"0.005", 2, "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := thb(tt.in).Round(tt.places)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.want)),
				"Round(%s, %d) = %s, want %s", tt.in, tt.places, got.Amount, tt.want)
		})
	}
}

func TestAdd_CurrencyMismatch(t *testing.T) {
	_, err := thb("10").Add(money.MustParse("10", money.USD))

	require.Error(t, err)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	var mismatch *money.CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, money.THB, mismatch.Left)
	assert.Equal(t, money.USD, mismatch.Right)
}

func TestAdd_ZeroValueAdoptsCurrency(t *testing.T) {
	// GIVEN: A missing field (zero value, no currency)
	// WHEN: Added to a THB amount
	// THEN: It behaves as zero THB
	got, err := money.Money{}.Add(thb("250.25"))
	require.NoError(t, err)
	assert.Equal(t, money.THB, got.Currency)
	assert.Equal(t, "250.25 THB", got.String())
}

func TestAdd_UntaggedAmountAdoptsCurrency(t *testing.T) {
	untagged := money.New(decimal.NewFromInt(100), "")

	got, err := untagged.Add(thb("0.5"))
	require.NoError(t, err)
	assert.Equal(t, "100.50 THB", got.String())

	got, err = thb("200").Sub(untagged)
	require.NoError(t, err)
	assert.Equal(t, "100.00 THB", got.String())

	got, err = untagged.Add(money.New(decimal.NewFromInt(1), ""))
	require.NoError(t, err)
	assert.Equal(t, money.Currency(""), got.Currency)
}

func TestSub(t *testing.T) {
	got, err := thb("26000").Sub(thb("1325"))
	require.NoError(t, err)
	assert.True(t, got.Equal(thb("24675")))
}

func TestClamp(t *testing.T) {
	lo, hi := decimal.NewFromInt(1650), decimal.NewFromInt(17500)

	assert.True(t, thb("-5").Clamp(lo, hi).Amount.Equal(lo))
	assert.True(t, thb("20000").Clamp(lo, hi).Amount.Equal(hi))
	assert.True(t, thb("9000.5").Clamp(lo, hi).Amount.Equal(decimal.RequireFromString("9000.5")))
}

func TestSum(t *testing.T) {
	total, err := money.Sum(money.THB, thb("0.1"), thb("0.2"), thb("0.3"))
	require.NoError(t, err)
	assert.True(t, total.Amount.Equal(decimal.RequireFromString("0.6")), "no float drift: %s", total)

	empty, err := money.Sum(money.THB)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
	assert.Equal(t, money.THB, empty.Currency)

	_, err = money.Sum(money.THB, thb("1"), money.FromInt(1, money.EUR))
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestFromString_Invalid(t *testing.T) {
	_, err := money.FromString("12,50", money.THB)
	assert.Error(t, err)
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(thb("83"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"83.00","currency":"THB"}`, string(data))

	var m money.Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":1650.5,"currency":"THB"}`), &m))
	assert.True(t, m.Equal(thb("1650.5")))

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"0.10"}`), &m))
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, money.Currency(""), m.Currency)
}
