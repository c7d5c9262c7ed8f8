package position

import (
	"math/big"

	"rangePlanner/internal/ratio"
)

// Liquidity is a position's contribution to pool liquidity, in the pool's
// raw units. It is non-negative because ratio.Ratio is.
type Liquidity struct {
	r ratio.Ratio
}

// Amount0 is a raw amount of the pool's token0.
type Amount0 struct {
	r ratio.Ratio
}

// Amount1 is a raw amount of the pool's token1.
type Amount1 struct {
	r ratio.Ratio
}

func NewLiquidity(r ratio.Ratio) Liquidity { return Liquidity{r: r} }

func NewAmount0(r ratio.Ratio) Amount0 { return Amount0{r: r} }

func NewAmount1(r ratio.Ratio) Amount1 { return Amount1{r: r} }

// LiquidityFromBig reads an on-chain uint128. Negative values are rejected.
func LiquidityFromBig(v *big.Int) (Liquidity, error) {
	r, err := ratio.FromBigInt(v, 0)
	if err != nil {
		return Liquidity{}, err
	}
	return Liquidity{r: r}, nil
}

func (l Liquidity) Ratio() ratio.Ratio { return l.r }

func (l Liquidity) IsZero() bool { return l.r.IsZero() }

func (l Liquidity) Cmp(o Liquidity) int { return l.r.Cmp(o.r) }

func (l Liquidity) String() string { return l.r.String() }

// Floor is the largest integer liquidity not above l, the amount a mint can
// request without exceeding the provided tokens.
func (l Liquidity) Floor() *big.Int { return l.r.Floor(0).BigInt() }

func MinLiquidity(a, b Liquidity) Liquidity {
	return Liquidity{r: ratio.Min(a.r, b.r)}
}

func (a Amount0) Ratio() ratio.Ratio { return a.r }

func (a Amount0) IsZero() bool { return a.r.IsZero() }

func (a Amount0) String() string { return a.r.String() }

// Ceil rounds up to whole base units.
func (a Amount0) Ceil() *big.Int { return a.r.Ceil(0).BigInt() }

func (a Amount1) Ratio() ratio.Ratio { return a.r }

func (a Amount1) IsZero() bool { return a.r.IsZero() }

func (a Amount1) String() string { return a.r.String() }

func (a Amount1) Ceil() *big.Int { return a.r.Ceil(0).BigInt() }
