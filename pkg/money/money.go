// Package money converts between integer minor units and display strings.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("money: invalid amount")
	ErrTooPrecise    = errors.New("money: more decimal places than the currency allows")
)

// Currency describes how minor units map to major units.
type Currency struct {
	// Exponent is the number of minor-unit digits, 2 for rupees and cents.
	Exponent int32
	Symbol   string
}

// INR is the default display currency.
var INR = Currency{Exponent: 2, Symbol: "₹"}

// Decimal returns minor as a major-unit decimal.
func (c Currency) Decimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -c.Exponent)
}

// Format renders minor units with the symbol and thousands separators,
// e.g. -123456 → "-₹1,234.56".
func (c Currency) Format(minor int64) string {
	d := c.Decimal(minor)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(c.Exponent)
	whole, frac, _ := strings.Cut(fixed, ".")
	out := sign + c.Symbol + group(whole)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// FormatAbs is Format without the sign, for "you owe"/"you get" labels.
func (c Currency) FormatAbs(minor int64) string {
	if minor < 0 {
		minor = -minor
	}
	return c.Format(minor)
}

// Parse converts a major-unit string such as "12.5" into minor units.
func (c Currency) Parse(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), c.Symbol), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	scaled := d.Shift(c.Exponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q", ErrTooPrecise, s)
	}
	if scaled.Abs().GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return scaled.IntPart(), nil
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
