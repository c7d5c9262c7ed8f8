package tickmath

import (
	"math/big"

	"github.com/shopspring/decimal"

	"rangePlanner/internal/ratio"
)

// lnTickBase is ln(1.0001) carried with extra digits so that
// tick*lnTickBase stays exact to Precision even at MaxTick.
var lnTickBase = mustLn("1.0001", ratio.Precision+24)

// halfLnTickBase is ln(sqrt(1.0001)).
var halfLnTickBase = lnTickBase.Mul(decimal.New(5, -1))

var (
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

	// MinSqrtRatioX96 and MaxSqrtRatioX96 are the pool contract's bounds on
	// sqrtPriceX96; the max is exclusive.
	MinSqrtRatioX96 = big.NewInt(4295128739)
	MaxSqrtRatioX96 = mustBig("1461446703485210103287273052203988822378723970342")

	MinSqrtRatio = mustFraction(MinSqrtRatioX96, Q96)
	MaxSqrtRatio = mustFraction(MaxSqrtRatioX96, Q96)

	minRatio = GetSqrtRatio(Tick{v: MinTick}).Square()
	maxRatio = GetSqrtRatio(Tick{v: MaxTick}).Square()
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("tickmath: bad integer literal " + s)
	}
	return v
}

func mustFraction(num, den *big.Int) ratio.Ratio {
	r, err := ratio.FromFraction(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

func mustLn(s string, places int32) decimal.Decimal {
	l, err := decimal.RequireFromString(s).Ln(places)
	if err != nil {
		panic(err)
	}
	return l
}

// GetSqrtRatio returns sqrt(1.0001^t) as exp(t * ln(1.0001) / 2).
func GetSqrtRatio(t Tick) ratio.Ratio {
	return ratio.Exp(halfLnTickBase.Mul(decimal.NewFromInt32(t.v)))
}

// GetTickAtRatio returns the greatest tick whose squared sqrt ratio does not
// exceed r. r is a linear ratio; values outside the tick range clamp to
// MinTick or MaxTick.
func GetTickAtRatio(r ratio.Ratio) Tick {
	if r.Cmp(minRatio) <= 0 {
		return Tick{v: MinTick}
	}
	if r.Cmp(maxRatio) >= 0 {
		return Tick{v: MaxTick}
	}

	ln, err := ratio.Ln(r, 24)
	if err != nil {
		return Tick{v: MinTick}
	}
	estimate := ln.DivRound(lnTickBase, 8).Floor().IntPart()
	if estimate < MinTick {
		estimate = MinTick
	}
	if estimate > MaxTick {
		estimate = MaxTick
	}

	t := int32(estimate)
	for t < MaxTick && GetSqrtRatio(Tick{v: t + 1}).Square().Cmp(r) <= 0 {
		t++
	}
	for t > MinTick && GetSqrtRatio(Tick{v: t}).Square().Cmp(r) > 0 {
		t--
	}
	return Tick{v: t}
}

// GetTickAtSqrtRatio squares sqrt and delegates to GetTickAtRatio.
func GetTickAtSqrtRatio(sqrt ratio.Ratio) Tick {
	return GetTickAtRatio(sqrt.Square())
}
