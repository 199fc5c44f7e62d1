package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(100), INR)
	require.NoError(t, err)
	assert.Equal(t, INR, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))

	_, err = NewMoney(decimal.NewFromInt(100), "")
	assert.Error(t, err)
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("590.00", INR)
	require.NoError(t, err)
	assert.Equal(t, "590.00", m.StringFixed())

	_, err = NewMoneyFromString("not-a-number", INR)
	assert.Error(t, err)
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyINRFromFloat(300.00)
	b := NewMoneyINRFromFloat(290.00)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "590.00", sum.StringFixed())

	diff, err := sum.Subtract(a)
	require.NoError(t, err)
	assert.True(t, diff.Equals(b))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	inr := NewMoneyINRFromFloat(10)
	usd, err := NewMoney(decimal.NewFromInt(10), USD)
	require.NoError(t, err)

	_, err = inr.Add(usd)
	assert.Error(t, err)
	_, err = inr.Subtract(usd)
	assert.Error(t, err)
	_, err = inr.LessThan(usd)
	assert.Error(t, err)

	assert.Panics(t, func() { inr.MustAdd(usd) })
}

func TestMoney_CalculatePercentage(t *testing.T) {
	base := NewMoneyINRFromFloat(500.00)
	tax := base.CalculatePercentage(decimal.NewFromInt(18))
	assert.Equal(t, "90.00", tax.RoundHalfUp().StringFixed())
}

func TestMoney_RoundHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10.00"},
		{"10.015", "10.02"},
		{"0.125", "0.13"},
		{"99.999", "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.in, INR)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.RoundHalfUp().StringFixed())
		})
	}
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyINRFromFloat(1)
	big := NewMoneyINRFromFloat(2)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, ZeroINR().IsZero())
	assert.True(t, big.IsPositive())
	assert.False(t, big.IsNegative())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyINRFromFloat(590.00)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var got Money
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, m.Equals(got))
}

func TestMoney_JSONDefaultCurrency(t *testing.T) {
	var got Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.34"}`), &got))
	assert.Equal(t, DefaultCurrency, got.Currency())
}
