package position

import (
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

func sortSqrt(a, b ratio.Ratio) (ratio.Ratio, ratio.Ratio) {
	if b.LessThan(a) {
		return b, a
	}
	return a, b
}

// MaxLiquidityForAmount0 is amount0 * sqrtA * sqrtB / (sqrtB - sqrtA). The
// bounds may come in either order; an empty interval yields zero.
func MaxLiquidityForAmount0(sqrtA, sqrtB ratio.Ratio, amount0 Amount0) Liquidity {
	lo, hi := sortSqrt(sqrtA, sqrtB)
	l, ok := amount0.r.Mul(lo).Mul(hi).Quo(hi.AbsDiff(lo))
	if !ok {
		return Liquidity{}
	}
	return Liquidity{r: l}
}

// MaxLiquidityForAmount1 is amount1 / (sqrtB - sqrtA).
func MaxLiquidityForAmount1(sqrtA, sqrtB ratio.Ratio, amount1 Amount1) Liquidity {
	lo, hi := sortSqrt(sqrtA, sqrtB)
	l, ok := amount1.r.Quo(hi.AbsDiff(lo))
	if !ok {
		return Liquidity{}
	}
	return Liquidity{r: l}
}

// Amount0Delta is liquidity * (sqrtB - sqrtA) / (sqrtA * sqrtB).
func Amount0Delta(sqrtA, sqrtB ratio.Ratio, liquidity Liquidity) Amount0 {
	lo, hi := sortSqrt(sqrtA, sqrtB)
	a, ok := liquidity.r.Mul(hi.AbsDiff(lo)).Quo(lo.Mul(hi))
	if !ok {
		return Amount0{}
	}
	return Amount0{r: a}
}

// Amount1Delta is liquidity * (sqrtB - sqrtA).
func Amount1Delta(sqrtA, sqrtB ratio.Ratio, liquidity Liquidity) Amount1 {
	lo, hi := sortSqrt(sqrtA, sqrtB)
	return Amount1{r: liquidity.r.Mul(hi.AbsDiff(lo))}
}

// Case says where the current tick sits relative to a range.
type Case int

const (
	// BelowRange: tickCurrent <= tickLower, only token0 is deposited.
	BelowRange Case = iota
	// InRange: tickLower < tickCurrent < tickUpper, both tokens.
	InRange
	// AboveRange: tickCurrent >= tickUpper, only token1 is deposited.
	AboveRange
)

func (c Case) String() string {
	switch c {
	case BelowRange:
		return "below"
	case InRange:
		return "in"
	case AboveRange:
		return "above"
	default:
		return "unknown"
	}
}

func Classify(current, lower, upper tickmath.Tick) Case {
	switch {
	case current.Int() <= lower.Int():
		return BelowRange
	case current.Int() < upper.Int():
		return InRange
	default:
		return AboveRange
	}
}

// Range is a price interval with the square roots of its boundaries.
type Range struct {
	Lower     tickmath.UsableTick
	Upper     tickmath.UsableTick
	SqrtLower ratio.Ratio
	SqrtUpper ratio.Ratio
}

func NewRange(lower, upper tickmath.UsableTick) Range {
	return Range{
		Lower:     lower,
		Upper:     upper,
		SqrtLower: tickmath.GetSqrtRatio(lower.Tick()),
		SqrtUpper: tickmath.GetSqrtRatio(upper.Tick()),
	}
}

// LiquidityForAmounts is the largest liquidity the two amounts can back
// over r at the given current tick and sqrt ratio.
func LiquidityForAmounts(r Range, current tickmath.Tick, sqrtCurrent ratio.Ratio, amount0 Amount0, amount1 Amount1) Liquidity {
	switch Classify(current, r.Lower.Tick(), r.Upper.Tick()) {
	case BelowRange:
		return MaxLiquidityForAmount0(r.SqrtLower, r.SqrtUpper, amount0)
	case InRange:
		return MinLiquidity(
			MaxLiquidityForAmount0(sqrtCurrent, r.SqrtUpper, amount0),
			MaxLiquidityForAmount1(r.SqrtLower, sqrtCurrent, amount1),
		)
	default:
		return MaxLiquidityForAmount1(r.SqrtLower, r.SqrtUpper, amount1)
	}
}

// AmountsForLiquidity splits liquidity into the token amounts it needs
// over r.
func AmountsForLiquidity(r Range, current tickmath.Tick, sqrtCurrent ratio.Ratio, liquidity Liquidity) (Amount0, Amount1) {
	switch Classify(current, r.Lower.Tick(), r.Upper.Tick()) {
	case BelowRange:
		return Amount0Delta(r.SqrtLower, r.SqrtUpper, liquidity), Amount1{}
	case InRange:
		return Amount0Delta(sqrtCurrent, r.SqrtUpper, liquidity), Amount1Delta(r.SqrtLower, sqrtCurrent, liquidity)
	default:
		return Amount0{}, Amount1Delta(r.SqrtLower, r.SqrtUpper, liquidity)
	}
}
