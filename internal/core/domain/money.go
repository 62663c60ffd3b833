package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount in integer minor units. All allocation math
// happens on Cents; decimals exist only at the parsing/display boundary.
type Cents int64

// MaxAmount bounds every stored amount, so schedule and month sums stay
// far from int64 overflow.
const MaxAmount Cents = 1_000_000_000_000

// ParseCents normalises a decimal currency string ("100", "99.9", "12.345")
// to cents, rounding half away from zero at the second decimal place.
func ParseCents(s string) (Cents, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid currency amount %q: %w", s, err)
	}
	return CentsFromDecimal(d)
}

// CentsFromDecimal rounds d to cents. Amounts beyond MaxAmount in either
// direction are rejected rather than truncated.
func CentsFromDecimal(d decimal.Decimal) (Cents, error) {
	cents := d.Round(2).Shift(2)
	if cents.Abs().GreaterThan(decimal.NewFromInt(int64(MaxAmount))) {
		return 0, ErrAmountOutOfRange
	}
	return Cents(cents.IntPart()), nil
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}
