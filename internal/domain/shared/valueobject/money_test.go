package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), INR)
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", INR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", INR)
		assert.Error(t, err)
	})
}

func TestMoney_ZeroValueDefaultsCurrency(t *testing.T) {
	var m Money
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.True(t, m.IsZero())
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyINRFromInt(800)
	b := NewMoneyINRFromInt(200)

	assert.True(t, a.MustAdd(b).Equals(NewMoneyINRFromInt(1000)))
	assert.True(t, a.MustSubtract(b).Equals(NewMoneyINRFromInt(600)))
	assert.True(t, b.MultiplyByInt(3).Equals(NewMoneyINRFromInt(600)))

	_, err := a.Add(Zero(USD))
	assert.Error(t, err)
}

func TestMoney_Min(t *testing.T) {
	a := NewMoneyINRFromInt(200)
	b := NewMoneyINRFromInt(100)

	assert.True(t, a.Min(b).Equals(b))
	assert.True(t, b.Min(a).Equals(b))
}

func TestMoney_Percent(t *testing.T) {
	m := NewMoneyINRFromInt(1000)
	assert.True(t, m.Percent(decimal.NewFromInt(20)).Equals(NewMoneyINRFromInt(200)))
	assert.Equal(t, "0.333", mustMoney(t, "3.33").Percent(decimal.NewFromInt(10)).StringFixed(3))
}

func TestMoney_MinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"1", 100},
		{"499.99", 49999},
		{"10.005", 1001},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, INR)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.MinorUnits())
		})
	}

	assert.True(t, NewMoneyFromMinorUnits(49999, INR).Equals(mustMoney(t, "499.99")))
}

func TestMoney_Display(t *testing.T) {
	assert.Equal(t, "₹200", NewMoneyINRFromInt(200).Display())
	assert.Equal(t, "₹99.50", mustMoney(t, "99.5").Display())
	assert.Equal(t, "$5", Zero(USD).MustAdd(mustMoneyIn(t, "5", USD)).Display())
}

func TestMoney_JSON(t *testing.T) {
	m := mustMoney(t, "1234.5")
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.50","currency":"INR"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(m))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.10"))
	assert.True(t, m.Equals(mustMoney(t, "42.10")))

	require.NoError(t, m.Scan([]byte("7")))
	assert.True(t, m.Equals(NewMoneyINRFromInt(7)))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(struct{}{}))
}

func mustMoney(t *testing.T, s string) Money {
	return mustMoneyIn(t, s, INR)
}

func mustMoneyIn(t *testing.T, s string, c Currency) Money {
	t.Helper()
	m, err := NewMoneyFromString(s, c)
	require.NoError(t, err)
	return m
}
