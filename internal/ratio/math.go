package ratio

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// sqrtBits is the big.Float mantissa used for square roots (~150 digits).
const sqrtBits = 512

var (
	decOne  = decimal.NewFromInt(1)
	decHalf = decimal.New(5, -1)
)

// Exp returns e^x rounded to Precision. Negative x is allowed.
//
// The argument is halved until |x| <= 1/2, the Taylor series is summed at
// workPrecision and the result squared back up. decimal.ExpTaylor is not used
// because it memoizes factorials in a package-level slice without locking.
func Exp(x decimal.Decimal) Ratio {
	if x.IsZero() {
		return One
	}
	neg := x.IsNegative()
	y := x.Abs()

	halvings := 0
	for y.GreaterThan(decHalf) {
		y = y.Mul(decHalf)
		halvings++
	}

	sum := decOne
	term := decOne
	for i := int64(1); ; i++ {
		term = term.Mul(y).DivRound(decimal.NewFromInt(i), workPrecision)
		if term.IsZero() {
			break
		}
		sum = sum.Add(term)
	}

	for ; halvings > 0; halvings-- {
		sum = sum.Mul(sum).Round(workPrecision)
	}

	if neg {
		sum = decOne.DivRound(sum, workPrecision)
	}
	return Ratio{d: sum.Round(Precision)}
}

// Ln returns the natural logarithm of r with places fractional digits.
func Ln(r Ratio, places int32) (decimal.Decimal, error) {
	if r.IsZero() {
		return decimal.Zero, fmt.Errorf("ln of zero")
	}
	return r.d.Ln(places)
}

func sqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	f, ok := new(big.Float).SetPrec(sqrtBits).SetString(d.String())
	if !ok {
		panic(fmt.Sprintf("ratio: cannot represent %s as big.Float", d.String()))
	}
	root := new(big.Float).SetPrec(sqrtBits).Sqrt(f)
	out, err := decimal.NewFromString(root.Text('f', int(workPrecision)))
	if err != nil {
		panic(fmt.Sprintf("ratio: sqrt result: %v", err))
	}
	return out
}
