// Package money implements exact fixed-point currency amounts.
//
// A Money value is a signed count of minor currency units (cents). No
// floating-point value is ever used for arithmetic; conversions from decimal
// text or OCR floats happen once, at the boundary, through Parse and FromFloat.
package money

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used by String when no currency is given.
const DefaultCurrency = "USD"

var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrNoRecipients   = errors.New("at least one recipient is required")
	ErrZeroWeight     = errors.New("weights sum to zero but amount is not zero")
	ErrSubCent        = errors.New("amount has more precision than one cent")
	ErrDivideByZero   = errors.New("division by zero")
)

// Money is an amount in minor currency units.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

// Cents returns a Money of n minor units.
func Cents(n int64) Money { return Money(n) }

func (m Money) Cents() int64         { return int64(m) }
func (m Money) Add(n Money) Money    { return m + n }
func (m Money) Sub(n Money) Money    { return m - n }
func (m Money) Neg() Money           { return -m }
func (m Money) MulInt(n int64) Money { return m * Money(n) }
func (m Money) IsZero() bool         { return m == 0 }
func (m Money) IsPositive() bool     { return m > 0 }
func (m Money) IsNegative() bool     { return m < 0 }

// Sign returns -1, 0 or +1.
func (m Money) Sign() int {
	switch {
	case m < 0:
		return -1
	case m > 0:
		return 1
	}
	return 0
}

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// DivMod divides m by n, truncating toward zero like Go's integer division.
func (m Money) DivMod(n int64) (Money, Money, error) {
	if n == 0 {
		return 0, 0, ErrDivideByZero
	}
	return m / Money(n), m % Money(n), nil
}

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// MulIntChecked returns m*n, or false if the product does not fit in an int64.
func (m Money) MulIntChecked(n int64) (Money, bool) {
	hi, lo := bits.Mul64(magnitude(int64(m)), magnitude(n))
	if hi != 0 {
		return 0, false
	}
	if (m < 0) != (n < 0) && m != 0 && n != 0 {
		if lo > 1<<63 {
			return 0, false
		}
		return Money(-int64(lo - 1) - 1), true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return Money(lo), true
}

// AddChecked returns m+n, or false on int64 overflow.
func (m Money) AddChecked(n Money) (Money, bool) {
	s := m + n
	if (n > 0 && s < m) || (n < 0 && s > m) {
		return 0, false
	}
	return s, true
}

// SumChecked adds all amounts, or returns false if any partial sum overflows.
func SumChecked(amounts ...Money) (Money, bool) {
	var total Money
	for _, a := range amounts {
		var ok bool
		if total, ok = total.AddChecked(a); !ok {
			return 0, false
		}
	}
	return total, true
}

func magnitude(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// Parse converts a decimal string such as "70.95" into Money.
// Values with sub-cent precision are rejected rather than rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts an exact decimal in major units into Money.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s", ErrSubCent, d.String())
	}
	return Money(cents.IntPart()), nil
}

// FromFloat converts a float in major units (as produced by receipt OCR) into
// Money, rounding half away from zero to the nearest cent.
func FromFloat(f float64) Money {
	return Money(decimal.NewFromFloat(f).Shift(2).Round(0).IntPart())
}

// Decimal returns m in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Display formats m in the given ISO currency, e.g. "$70.95".
func (m Money) Display(currency string) string {
	return gomoney.New(int64(m), currency).Display()
}

// String formats m in DefaultCurrency.
func (m Money) String() string {
	return m.Display(DefaultCurrency)
}

// MarshalJSON encodes m as a bare integer count of cents.
func (m Money) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(m), 10), nil
}

// UnmarshalJSON accepts only integer cents; fractional numbers are rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("money must be an integer count of cents: %w", err)
	}
	*m = Money(n)
	return nil
}
