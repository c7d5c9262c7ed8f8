package position

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rangePlanner/internal/model"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

// Draft is a mint-ready position: boundary ticks, the liquidity to request
// and the token amounts that liquidity consumes at the captured price.
type Draft struct {
	pool        common.Address
	tickLower   tickmath.UsableTick
	tickUpper   tickmath.UsableTick
	tickCurrent tickmath.Tick
	amount0     Amount0
	amount1     Amount1
	liquidity   Liquidity
	sqrtRatio   ratio.Ratio
}

func checkBounds(pool Pool, lower, upper tickmath.UsableTick) error {
	if lower.Int() >= upper.Int() {
		return model.NewValidationError("tickLower", lower.Tick().String(), "must be below tickUpper "+upper.Tick().String())
	}
	spacing := pool.Spacing()
	if lower.Spacing() != spacing {
		return model.NewValidationError("tickLower", lower.Tick().String(), "spacing does not match the pool fee tier")
	}
	if upper.Spacing() != spacing {
		return model.NewValidationError("tickUpper", upper.Tick().String(), "spacing does not match the pool fee tier")
	}
	return nil
}

func newDraft(pool Pool, r Range, liquidity Liquidity) Draft {
	sqrt := pool.SqrtRatio()
	amount0, amount1 := AmountsForLiquidity(r, pool.Tick, sqrt, liquidity)
	return Draft{
		pool:        pool.Address,
		tickLower:   r.Lower,
		tickUpper:   r.Upper,
		tickCurrent: pool.Tick,
		amount0:     amount0,
		amount1:     amount1,
		liquidity:   liquidity,
		sqrtRatio:   sqrt,
	}
}

// NewDraftFromAmounts sizes the largest position the raw amounts can back.
// The draft's amounts are what that liquidity consumes, never more than
// the inputs.
func NewDraftFromAmounts(pool Pool, lower, upper tickmath.UsableTick, amount0 Amount0, amount1 Amount1) (Draft, error) {
	if err := checkBounds(pool, lower, upper); err != nil {
		return Draft{}, err
	}
	if amount0.IsZero() && amount1.IsZero() {
		return Draft{}, model.NewValidationError("amounts", "0/0", "at least one amount must be positive")
	}
	r := NewRange(lower, upper)
	liquidity := LiquidityForAmounts(r, pool.Tick, pool.SqrtRatio(), amount0, amount1)
	if liquidity.IsZero() {
		c := Classify(pool.Tick, lower.Tick(), upper.Tick())
		return Draft{}, model.NewValidationError("amounts", amount0.String()+"/"+amount1.String(),
			"no liquidity for a range "+c.String()+" the current tick")
	}
	return newDraft(pool, r, liquidity), nil
}

// NewDraftFromLiquidity prices a target liquidity over the range.
func NewDraftFromLiquidity(pool Pool, lower, upper tickmath.UsableTick, liquidity Liquidity) (Draft, error) {
	if err := checkBounds(pool, lower, upper); err != nil {
		return Draft{}, err
	}
	if liquidity.IsZero() {
		return Draft{}, model.NewValidationError("liquidity", liquidity.String(), "must be positive")
	}
	return newDraft(pool, NewRange(lower, upper), liquidity), nil
}

func (d Draft) Pool() common.Address { return d.pool }

func (d Draft) TickLower() tickmath.UsableTick { return d.tickLower }

func (d Draft) TickUpper() tickmath.UsableTick { return d.tickUpper }

func (d Draft) TickCurrent() tickmath.Tick { return d.tickCurrent }

func (d Draft) Amount0() Amount0 { return d.amount0 }

func (d Draft) Amount1() Amount1 { return d.amount1 }

func (d Draft) Liquidity() Liquidity { return d.liquidity }

func (d Draft) SqrtRatio() ratio.Ratio { return d.sqrtRatio }

func (d Draft) Case() Case {
	return Classify(d.tickCurrent, d.tickLower.Tick(), d.tickUpper.Tick())
}

// MintAmounts are the desired amounts in whole base units, rounded up so
// the mint is not short of either token.
func (d Draft) MintAmounts() (*big.Int, *big.Int) {
	return d.amount0.Ceil(), d.amount1.Ceil()
}

// MintLiquidity is the liquidity in whole units, rounded down.
func (d Draft) MintLiquidity() *big.Int {
	return d.liquidity.Floor()
}
