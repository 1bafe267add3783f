package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid money amount")
)

// two decimal places everywhere; balances are NUMERIC(14,2) in the store.
const exponent = 2

// Parse converts a user-entered amount string into a decimal rounded to two
// places. It accepts plain decimal forms like "250", "12.5", "0.01".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.Round(exponent), nil
}

// ParsePositive is Parse plus a strictly-positive check. Ledger entry
// magnitudes must be > 0.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return d, nil
}

// FromFloat converts a JSON number into a two-place decimal. Import payloads
// carry floats; everything internal stays decimal.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(exponent)
}

// String renders d in the canonical two-place form used by the export format.
func String(d decimal.Decimal) string {
	return d.StringFixed(exponent)
}
