package ratio

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits every Ratio is rounded to.
// Rounding is HALF_UP (away from zero), which for non-negative values is
// what decimal.Round and decimal.DivRound do.
const Precision int32 = 64

// workPrecision carries guard digits through intermediate steps.
const workPrecision = Precision + 16

var ErrNegative = errors.New("ratio must not be negative")

var (
	Zero = Ratio{d: decimal.Zero}
	One  = Ratio{d: decimal.NewFromInt(1)}
)

// Ratio is a non-negative arbitrary-precision decimal. The zero value is 0.
type Ratio struct {
	d decimal.Decimal
}

// New validates d and rounds it to Precision.
func New(d decimal.Decimal) (Ratio, error) {
	if d.IsNegative() {
		return Ratio{}, fmt.Errorf("%w: %s", ErrNegative, d.String())
	}
	return Ratio{d: d.Round(Precision)}, nil
}

// Parse reads a decimal string such as "4000" or "1e-9".
func Parse(s string) (Ratio, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Ratio{}, fmt.Errorf("parse ratio %q: %w", s, err)
	}
	return New(d)
}

func MustParse(s string) Ratio {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func FromInt(v int64) (Ratio, error) {
	return New(decimal.NewFromInt(v))
}

// FromBigInt scales v by 10^exp, so FromBigInt(x, -96) is x / 10^96.
func FromBigInt(v *big.Int, exp int32) (Ratio, error) {
	if v == nil {
		return Zero, nil
	}
	return New(decimal.NewFromBigInt(v, exp))
}

// FromFraction returns num/den rounded to Precision.
func FromFraction(num, den *big.Int) (Ratio, error) {
	if den == nil || den.Sign() == 0 {
		return Ratio{}, fmt.Errorf("zero denominator")
	}
	n := decimal.NewFromBigInt(num, 0)
	return New(n.DivRound(decimal.NewFromBigInt(den, 0), Precision))
}

func (r Ratio) Decimal() decimal.Decimal { return r.d }

func (r Ratio) String() string { return r.d.String() }

// StringFixed renders exactly places fractional digits.
func (r Ratio) StringFixed(places int32) string { return r.d.StringFixed(places) }

func (r Ratio) IsZero() bool { return r.d.IsZero() }

func (r Ratio) Cmp(o Ratio) int { return r.d.Cmp(o.d) }

func (r Ratio) Equal(o Ratio) bool { return r.d.Equal(o.d) }

func (r Ratio) LessThan(o Ratio) bool { return r.d.LessThan(o.d) }

func (r Ratio) Add(o Ratio) Ratio {
	return Ratio{d: r.d.Add(o.d).Round(Precision)}
}

func (r Ratio) Mul(o Ratio) Ratio {
	return Ratio{d: r.d.Mul(o.d).Round(Precision)}
}

// Quo divides r by o. ok is false when o is zero.
func (r Ratio) Quo(o Ratio) (q Ratio, ok bool) {
	if o.d.IsZero() {
		return Zero, false
	}
	return Ratio{d: r.d.DivRound(o.d, Precision)}, true
}

// AbsDiff returns |r - o|.
func (r Ratio) AbsDiff(o Ratio) Ratio {
	return Ratio{d: r.d.Sub(o.d).Abs()}
}

// Inverse returns 1/r. ok is false when r is zero.
func (r Ratio) Inverse() (Ratio, bool) {
	return One.Quo(r)
}

func (r Ratio) Square() Ratio {
	return r.Mul(r)
}

func (r Ratio) Sqrt() Ratio {
	return Ratio{d: sqrt(r.d).Round(Precision)}
}

// Shift multiplies r by 10^exp.
func (r Ratio) Shift(exp int32) Ratio {
	return Ratio{d: r.d.Shift(exp).Round(Precision)}
}

// Floor rounds toward negative infinity at places fractional digits.
func (r Ratio) Floor(places int32) Ratio {
	return Ratio{d: r.d.RoundFloor(places)}
}

// Ceil rounds toward positive infinity at places fractional digits.
func (r Ratio) Ceil(places int32) Ratio {
	return Ratio{d: r.d.RoundCeil(places)}
}

// Round rounds HALF_UP at places fractional digits.
func (r Ratio) Round(places int32) Ratio {
	return Ratio{d: r.d.Round(places)}
}

// BigInt truncates the fractional part.
func (r Ratio) BigInt() *big.Int {
	return r.d.BigInt()
}

func Min(a, b Ratio) Ratio {
	if a.d.LessThanOrEqual(b.d) {
		return a
	}
	return b
}

func Max(a, b Ratio) Ratio {
	if a.d.GreaterThanOrEqual(b.d) {
		return a
	}
	return b
}
