// Package money holds amounts as integer minor units (cents).
//
// All arithmetic inside the service happens on Cents. Conversion to and
// from the decimal numbers used on the wire goes through shopspring/decimal
// so that rounding is explicit and exact.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount in the smallest currency subunit.
type Cents int64

// subunitExp is the number of decimal places in one major unit.
const subunitExp = 2

// MaxAmount is the largest single amount accepted from a client. Sums of
// up to ~900k such amounts stay inside int64.
const MaxAmount Cents = 10_000_000_000_000

var ErrOverflow = errors.New("amount out of range")

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// FromDecimal converts a major-unit decimal to Cents, rounding half to even
// on the first dropped digit.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	shifted := d.Shift(subunitExp).RoundBank(0)
	if shifted.GreaterThan(maxCents) || shifted.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, d.String())
	}
	return Cents(shifted.IntPart()), nil
}

// Add returns a+b, or ErrOverflow when the sum does not fit in int64.
func Add(a, b Cents) (Cents, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	return sum, nil
}

// Decimal returns the amount in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -subunitExp)
}

// Float returns the amount in major units for JSON output.
// Never feed the result back into calculations.
func (c Cents) Float() float64 {
	return c.Decimal().InexactFloat64()
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(subunitExp)
}

// Abs returns the absolute value of c.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// DivideEven divides total into n parts and rounds the quotient to a whole
// subunit, half to even. Returns 0 when n <= 0.
func DivideEven(total Cents, n int) Cents {
	if n <= 0 {
		return 0
	}
	q := decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(n)))
	return Cents(q.RoundBank(0).IntPart())
}
