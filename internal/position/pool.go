package position

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rangePlanner/internal/model"
	"rangePlanner/internal/price"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

// Pool is the state a draft is priced against: the ordered pair, fee tier
// and the current slot0 price and tick.
type Pool struct {
	Address common.Address
	Fee     tickmath.FeeTier
	Price   price.TokenPrice
	Tick    tickmath.Tick
}

// PoolFromSlot0 decodes slot0 for the pair. The tokens may be passed in
// either order; sqrtPriceX96 is always token1 per token0.
func PoolFromSlot0(address common.Address, fee tickmath.FeeTier, slot0 model.PoolSlot0, token0, token1 price.Token) (Pool, error) {
	if token1.Less(token0) {
		token0, token1 = token1, token0
	}
	sqrtX96, ok := new(big.Int).SetString(slot0.SqrtPriceX96, 10)
	if !ok {
		return Pool{}, model.NewValidationError("sqrtPriceX96", slot0.SqrtPriceX96, "not a base-10 integer")
	}
	p, err := price.FromSqrtQ64x96(token0, token1, sqrtX96)
	if err != nil {
		return Pool{}, fmt.Errorf("pool %s slot0: %w", address.Hex(), err)
	}
	tick, err := tickmath.NewTick(int(slot0.Tick))
	if err != nil {
		return Pool{}, fmt.Errorf("pool %s slot0: %w", address.Hex(), err)
	}
	return Pool{Address: address, Fee: fee, Price: p, Tick: tick}, nil
}

func (p Pool) Spacing() tickmath.TickSpacing { return p.Fee.TickSpacing() }

func (p Pool) Token0() price.Token { return p.Price.Token0() }

func (p Pool) Token1() price.Token { return p.Price.Token1() }

// SqrtRatio is the current raw sqrt price.
func (p Pool) SqrtRatio() ratio.Ratio { return p.Price.AsSqrt() }

// SymmetricRange returns the usable ticks width spacings below and above
// the usable tick nearest to current, clamped to the usable extremes. ok is
// false for a non-positive width.
func SymmetricRange(current tickmath.Tick, spacing tickmath.TickSpacing, width int) (lower, upper tickmath.UsableTick, ok bool) {
	if width <= 0 {
		return tickmath.UsableTick{}, tickmath.UsableTick{}, false
	}
	center := tickmath.NearestUsableTick(current, spacing)
	lower, ok = tickmath.SubtractNTicks(center, width)
	if !ok {
		lower = tickmath.MinUsableTick(spacing)
	}
	upper, ok = tickmath.AddNTicks(center, width)
	if !ok {
		upper = tickmath.MaxUsableTick(spacing)
	}
	return lower, upper, true
}
