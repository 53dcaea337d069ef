package portfolio

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount wraps decimal.Decimal for quantities and monetary values.
// JSON marshaling outputs a number with full precision, while arithmetic
// stays exact.
type Amount struct {
	decimal.Decimal
}

// Zero is the zero Amount.
var Zero = Amount{decimal.Zero}

// MarshalJSON outputs as a JSON number (not a string).
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(data)
}

// Scan implements sql.Scanner. Values are stored as TEXT so fractional
// crypto quantities survive round trips, but REAL and INTEGER columns are
// accepted too.
func (a *Amount) Scan(src any) error {
	if src == nil {
		a.Decimal = decimal.Zero
		return nil
	}
	switch v := src.(type) {
	case float64:
		a.Decimal = decimal.NewFromFloat(v)
		return nil
	case int64:
		a.Decimal = decimal.NewFromInt(v)
		return nil
	case string:
		return a.parse(v)
	case []byte:
		return a.parse(string(v))
	}
	return fmt.Errorf("amount: unsupported scan type %T", src)
}

func (a *Amount) parse(s string) error {
	if s == "" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// Value implements driver.Valuer for database writes.
func (a Amount) Value() (driver.Value, error) {
	return a.Decimal.String(), nil
}

// NewAmountFromInt creates an Amount from an int64.
func NewAmountFromInt(i int64) Amount {
	return Amount{decimal.NewFromInt(i)}
}

// ParseAmount parses a decimal string such as "0.00001234".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	return Amount{d}, nil
}

// MustAmount is like ParseAmount but panics on malformed input. Intended for
// literals in tests and tables.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{a.Decimal.Add(b.Decimal)} }
func (a Amount) Sub(b Amount) Amount { return Amount{a.Decimal.Sub(b.Decimal)} }
func (a Amount) Mul(b Amount) Amount { return Amount{a.Decimal.Mul(b.Decimal)} }
func (a Amount) Neg() Amount         { return Amount{a.Decimal.Neg()} }

// Div divides a by b, returning zero when b is zero.
func (a Amount) Div(b Amount) Amount {
	if b.IsZero() {
		return Zero
	}
	return Amount{a.Decimal.Div(b.Decimal)}
}

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Equal(b Amount) bool       { return a.Decimal.Equal(b.Decimal) }
func (a Amount) LessThan(b Amount) bool    { return a.Decimal.LessThan(b.Decimal) }
func (a Amount) GreaterThan(b Amount) bool { return a.Decimal.GreaterThan(b.Decimal) }
