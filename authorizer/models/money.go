package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// moneyScale is the canonical number of fractional digits for all balances
// and amounts. Values are rescaled with banker's rounding (half-to-even)
// before they are compared, stored, or subtracted.
const moneyScale = 2

// Money is a fixed-scale decimal amount. The zero value is 0.00.
type Money struct {
	dec decimal.Decimal
}

// NewMoney normalizes d to the canonical scale.
func NewMoney(d decimal.Decimal) Money {
	return Money{dec: d.RoundBank(moneyScale)}
}

// NewMoneyFromString parses a decimal string and normalizes it.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parsing money value: %w", err)
	}
	return NewMoney(d), nil
}

// NewMoneyFromMinorUnits builds a Money from an integer count of minor
// units, e.g. 10050 -> 100.50. Used by the ISO 8583 layer where DE4 carries
// amounts in minor units.
func NewMoneyFromMinorUnits(units int64) Money {
	return NewMoney(decimal.New(units, -moneyScale))
}

func (m Money) Sub(o Money) Money {
	return NewMoney(m.dec.Sub(o.dec))
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	return m.dec.Cmp(o.dec)
}

func (m Money) IsPositive() bool { return m.dec.IsPositive() }
func (m Money) IsNegative() bool { return m.dec.IsNegative() }
func (m Money) IsZero() bool     { return m.dec.IsZero() }

func (m Money) Equal(o Money) bool { return m.dec.Equal(o.dec) }

// String renders the value with exactly two fractional digits.
func (m Money) String() string {
	return m.dec.StringFixed(moneyScale)
}

// MarshalJSON renders a plain JSON number ("400.00", unquoted), keeping the
// two-digit scale on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parsing money value: %w", err)
	}
	*m = NewMoney(d)
	return nil
}
