package models_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roberto5g/mini-authorizer/authorizer/models"
)

func TestMoneyNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500", "500.00"},
		{"100.005", "100.00"}, // half-to-even: 0 is even
		{"100.015", "100.02"}, // half-to-even: rounds up to even
		{"100.025", "100.02"},
		{"0.1", "0.10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := models.NewMoneyFromString(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, m.String())
		})
	}
}

func TestMoneySubtractIsNormalized(t *testing.T) {
	a, err := models.NewMoneyFromString("500.00")
	require.NoError(t, err)
	b, err := models.NewMoneyFromString("100.00")
	require.NoError(t, err)

	got := a.Sub(b)
	require.Equal(t, "400.00", got.String())

	// re-normalizing a result is a no-op
	renormalized := models.NewMoney(decimal.RequireFromString(got.String()))
	require.True(t, got.Equal(renormalized))
}

func TestMoneyCompare(t *testing.T) {
	a, _ := models.NewMoneyFromString("10.00")
	b, _ := models.NewMoneyFromString("10.001") // normalizes to 10.00
	c, _ := models.NewMoneyFromString("10.01")

	require.Equal(t, 0, a.Cmp(b))
	require.Equal(t, -1, a.Cmp(c))
	require.Equal(t, 1, c.Cmp(a))
}

func TestMoneyFromMinorUnits(t *testing.T) {
	require.Equal(t, "100.50", models.NewMoneyFromMinorUnits(10050).String())
	require.Equal(t, "0.01", models.NewMoneyFromMinorUnits(1).String())
}

func TestMoneyJSON(t *testing.T) {
	m, _ := models.NewMoneyFromString("400.00")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, "400.00", string(data))

	var decoded models.Money
	require.NoError(t, json.Unmarshal([]byte("100.5"), &decoded))
	require.Equal(t, "100.50", decoded.String())

	require.NoError(t, json.Unmarshal([]byte(`"20.00"`), &decoded))
	require.Equal(t, "20.00", decoded.String())
}
