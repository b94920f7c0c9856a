// Package money provides the exact fixed-precision arithmetic the matching
// engine requires for price, quantity, and volume. Binary floating point is
// never used for these values: equality and FIFO invariants in the book
// depend on exact comparison.
package money

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal wraps shopspring/decimal so the wire layer can accept JSON numbers
// and numeric strings interchangeably, per the spec's note that callers must
// avoid binary floating-point representations that would lose precision.
type Decimal struct {
	decimal.Decimal
}

// Zero is the additive identity.
var Zero = Decimal{decimal.Zero}

// New wraps an existing shopspring/decimal value.
func New(d decimal.Decimal) Decimal {
	return Decimal{d}
}

// Parse reads a decimal from a string, rejecting malformed input.
func Parse(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return Decimal{d}, nil
}

// UnmarshalJSON accepts both a bare JSON number (100.5) and a quoted numeric
// string ("100.5"), matching the permissive wire object the service layer
// decodes payloads into.
func (d *Decimal) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		d.Decimal = decimal.Zero
		return nil
	}
	s := string(bytes.Trim(raw, `"`))
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	d.Decimal = parsed
	return nil
}

// MarshalJSON widens to a JSON number for display; the engine never performs
// arithmetic on the marshalled form.
func (d Decimal) MarshalJSON() ([]byte, error) {
	f, _ := d.Decimal.Float64()
	return []byte(fmt.Sprintf("%v", f)), nil
}

// Float64 widens to binary floating point for response serialization only.
func (d Decimal) Float64() float64 {
	f, _ := d.Decimal.Float64()
	return f
}

// Add returns d+other as a money.Decimal.
func (d Decimal) Add(other Decimal) Decimal {
	return Decimal{d.Decimal.Add(other.Decimal)}
}

// Sub returns d-other as a money.Decimal.
func (d Decimal) Sub(other Decimal) Decimal {
	return Decimal{d.Decimal.Sub(other.Decimal)}
}

// Mul returns d*other as a money.Decimal.
func (d Decimal) Mul(other Decimal) Decimal {
	return Decimal{d.Decimal.Mul(other.Decimal)}
}

// Cmp compares d to other: -1, 0, or 1.
func (d Decimal) Cmp(other Decimal) int {
	return d.Decimal.Cmp(other.Decimal)
}

// GreaterThan reports whether d > other.
func (d Decimal) GreaterThan(other Decimal) bool {
	return d.Decimal.GreaterThan(other.Decimal)
}

// GreaterThanOrEqual reports whether d >= other.
func (d Decimal) GreaterThanOrEqual(other Decimal) bool {
	return d.Decimal.GreaterThanOrEqual(other.Decimal)
}

// LessThan reports whether d < other.
func (d Decimal) LessThan(other Decimal) bool {
	return d.Decimal.LessThan(other.Decimal)
}

// LessThanOrEqual reports whether d <= other.
func (d Decimal) LessThanOrEqual(other Decimal) bool {
	return d.Decimal.LessThanOrEqual(other.Decimal)
}

// Equal reports whether d == other.
func (d Decimal) Equal(other Decimal) bool {
	return d.Decimal.Equal(other.Decimal)
}

// IsZero reports whether d == 0.
func (d Decimal) IsZero() bool {
	return d.Decimal.IsZero()
}

// IsPositive reports whether d > 0.
func (d Decimal) IsPositive() bool {
	return d.Decimal.IsPositive()
}

// IsNegative reports whether d < 0.
func (d Decimal) IsNegative() bool {
	return d.Decimal.IsNegative()
}
