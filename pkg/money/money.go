package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by every amount.
const Scale = 8

var (
	ErrOverflow        = errors.New("money: overflow")
	ErrWouldBeNegative = errors.New("money: would be negative")
	ErrPrecision       = errors.New("money: more than 8 fractional digits")
)

var (
	maxUnits = decimal.NewFromInt(math.MaxInt64)
	minUnits = decimal.NewFromInt(math.MinInt64)
	hundred  = decimal.NewFromInt(100)
)

// Money is a signed fixed-point token amount stored as 1e-8 units.
type Money struct {
	units int64
}

// Zero is the zero amount.
var Zero = Money{}

// FromUnits builds an amount from its scaled integer representation.
func FromUnits(units int64) Money {
	return Money{units: units}
}

// Parse reads a decimal string such as "2.5" or "0.00000001".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts d, rejecting values that would lose precision or overflow.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Truncate(Scale)) {
		return Zero, ErrPrecision
	}
	shifted := d.Shift(Scale)
	if shifted.GreaterThan(maxUnits) || shifted.LessThan(minUnits) {
		return Zero, ErrOverflow
	}
	return Money{units: shifted.IntPart()}, nil
}

func (m Money) Units() int64 { return m.units }

// Decimal returns the exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -Scale)
}

// String formats with exactly eight fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(Scale)
}

func (m Money) CheckedAdd(o Money) (Money, error) {
	sum := m.units + o.units
	if (o.units > 0 && sum < m.units) || (o.units < 0 && sum > m.units) {
		return Zero, ErrOverflow
	}
	return Money{units: sum}, nil
}

func (m Money) CheckedSub(o Money) (Money, error) {
	diff := m.units - o.units
	if (o.units > 0 && diff > m.units) || (o.units < 0 && diff < m.units) {
		return Zero, ErrOverflow
	}
	return Money{units: diff}, nil
}

func (m Money) Neg() (Money, error) {
	if m.units == math.MinInt64 {
		return Zero, ErrOverflow
	}
	return Money{units: -m.units}, nil
}

// Percent returns m*p/100 truncated toward zero at eight digits.
func (m Money) Percent(p decimal.Decimal) (Money, error) {
	return FromDecimal(m.Decimal().Mul(p).Div(hundred).Truncate(Scale))
}

func (m Money) Cmp(o Money) int {
	switch {
	case m.units < o.units:
		return -1
	case m.units > o.units:
		return 1
	default:
		return 0
	}
}

func (m Money) Equal(o Money) bool       { return m.units == o.units }
func (m Money) LessThan(o Money) bool    { return m.units < o.units }
func (m Money) GreaterThan(o Money) bool { return m.units > o.units }
func (m Money) IsZero() bool             { return m.units == 0 }
func (m Money) IsNegative() bool         { return m.units < 0 }
func (m Money) IsPositive() bool         { return m.units > 0 }

// MarshalJSON encodes the amount as a fixed-digit string so clients never see floats.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("money: expected string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner for NUMERIC(18,8) columns.
func (m *Money) Scan(src interface{}) error {
	if v, ok := src.(Money); ok {
		*m = v
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("money: scan: %w", err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
