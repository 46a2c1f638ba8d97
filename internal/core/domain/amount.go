package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest price or payment accepted, 2^256-1 units. Storage
// columns are sized for balances accumulated from many such amounts.
var MaxAmount = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), 0)

var ErrAmountTooLarge = errors.New("amount exceeds 2^256-1 units")

// ParseAmount parses a whole number of smallest currency units. The sign is
// preserved; callers decide whether non-positive values are acceptable.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if !d.IsInteger() {
		return decimal.Zero, fmt.Errorf("amount %q is not a whole number of units", s)
	}
	return checkRange(d)
}

// ParseUnits converts a human readable value ("0.1") into smallest units
// given the currency's number of decimals.
func ParseUnits(s string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse units %q: %w", s, err)
	}
	units := d.Shift(decimals)
	if !units.IsInteger() {
		return decimal.Zero, fmt.Errorf("%q has more than %d decimals", s, decimals)
	}
	return checkRange(units)
}

func checkRange(d decimal.Decimal) (decimal.Decimal, error) {
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%s: %w", d, ErrAmountTooLarge)
	}
	return d, nil
}

// FormatUnits renders smallest units as a human readable value.
func FormatUnits(amount decimal.Decimal, decimals int32) string {
	return amount.Shift(-decimals).String()
}
