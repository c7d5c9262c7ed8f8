package position

import (
	"math/big"
	"testing"

	"github.com/daoleno/uniswapv3-sdk/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rangePlanner/internal/model"
	"rangePlanner/internal/price"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

var (
	weth     = price.Token{Address: common.HexToAddress("0x1111111111111111111111111111111111111111"), Decimals: 18, Symbol: "WETH"}
	usdc     = price.Token{Address: common.HexToAddress("0x2222222222222222222222222222222222222222"), Decimals: 6, Symbol: "USDC"}
	poolAddr = common.HexToAddress("0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8")
)

func poolAt(t *testing.T, tick int) Pool {
	t.Helper()
	p, err := price.FromTick(weth, usdc, tickmath.MustTick(tick))
	require.NoError(t, err)
	return Pool{Address: poolAddr, Fee: tickmath.FeeMedium, Price: p, Tick: tickmath.MustTick(tick)}
}

func usable(t *testing.T, tick int, spacing tickmath.TickSpacing) tickmath.UsableTick {
	t.Helper()
	u, err := tickmath.NewUsableTick(tickmath.MustTick(tick), spacing)
	require.NoError(t, err)
	return u
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func TestFormulas(t *testing.T) {
	one, two := ratio.One, ratio.MustParse("2")

	l0 := MaxLiquidityForAmount0(one, two, NewAmount0(ratio.MustParse("100")))
	assert.Equal(t, "200", l0.String())
	assert.Equal(t, "100", Amount0Delta(one, two, l0).String())

	l1 := MaxLiquidityForAmount1(two, one, NewAmount1(ratio.MustParse("50")))
	assert.Equal(t, "50", l1.String())
	assert.Equal(t, "50", Amount1Delta(two, one, l1).String())

	swapped := MaxLiquidityForAmount0(two, one, NewAmount0(ratio.MustParse("100")))
	assert.Zero(t, l0.Cmp(swapped))
}

func TestFormulasEmptyInterval(t *testing.T) {
	s := ratio.MustParse("1.5")
	assert.True(t, MaxLiquidityForAmount0(s, s, NewAmount0(ratio.One)).IsZero())
	assert.True(t, MaxLiquidityForAmount1(s, s, NewAmount1(ratio.One)).IsZero())
	assert.True(t, Amount1Delta(s, s, NewLiquidity(ratio.One)).IsZero())
	assert.True(t, Amount0Delta(ratio.Zero, s, NewLiquidity(ratio.One)).IsZero())
}

func TestClassify(t *testing.T) {
	lower, upper := tickmath.MustTick(-60), tickmath.MustTick(60)
	assert.Equal(t, BelowRange, Classify(tickmath.MustTick(-61), lower, upper))
	assert.Equal(t, BelowRange, Classify(lower, lower, upper))
	assert.Equal(t, InRange, Classify(tickmath.MustTick(0), lower, upper))
	assert.Equal(t, AboveRange, Classify(upper, lower, upper))
	assert.Equal(t, "in", InRange.String())
}

func TestAmountsForLiquidityBoundaries(t *testing.T) {
	spacing := tickmath.FeeMedium.TickSpacing()
	r := NewRange(usable(t, -120, spacing), usable(t, 120, spacing))
	liquidity := NewLiquidity(ratio.MustParse("1000000000000"))

	below := poolAt(t, -200)
	a0, a1 := AmountsForLiquidity(r, below.Tick, below.SqrtRatio(), liquidity)
	assert.False(t, a0.IsZero())
	assert.True(t, a1.IsZero())

	above := poolAt(t, 120)
	a0, a1 = AmountsForLiquidity(r, above.Tick, above.SqrtRatio(), liquidity)
	assert.True(t, a0.IsZero())
	assert.False(t, a1.IsZero())

	inside := poolAt(t, 7)
	a0, a1 = AmountsForLiquidity(r, inside.Tick, inside.SqrtRatio(), liquidity)
	assert.False(t, a0.IsZero())
	assert.False(t, a1.IsZero())
}

func TestLiquidityForAmountsMatchesOnChain(t *testing.T) {
	sqrtX96 := func(tick int) *big.Int {
		v, err := utils.GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		return v
	}
	toRatio := func(v *big.Int) ratio.Ratio {
		r, err := ratio.FromFraction(v, tickmath.Q96)
		require.NoError(t, err)
		return r
	}

	spacing := tickmath.FeeMedium.TickSpacing()
	amount0, _ := new(big.Int).SetString("1000000000000000000", 10)
	amount1, _ := new(big.Int).SetString("3000000000000000000000", 10)

	for _, current := range []int{-900, -600, 100, 599, 600, 900} {
		cur, lo, hi := sqrtX96(current), sqrtX96(-600), sqrtX96(600)
		want := utils.MaxLiquidityForAmounts(cur, lo, hi, amount0, amount1, true)

		r := Range{
			Lower:     usable(t, -600, spacing),
			Upper:     usable(t, 600, spacing),
			SqrtLower: toRatio(lo),
			SqrtUpper: toRatio(hi),
		}
		a0, err := ratio.FromBigInt(amount0, 0)
		require.NoError(t, err)
		a1, err := ratio.FromBigInt(amount1, 0)
		require.NoError(t, err)

		got := LiquidityForAmounts(r, tickmath.MustTick(current), toRatio(cur), NewAmount0(a0), NewAmount1(a1))
		wantDec := decimal.NewFromBigInt(want, 0)
		require.True(t, wantDec.IsPositive(), "tick %d", current)
		rel := got.Ratio().Decimal().Sub(wantDec).Abs().DivRound(wantDec, 30)
		assert.True(t, rel.LessThan(decimal.New(1, -9)), "tick %d: got %s want %s", current, got, want)
	}
}

func TestNewDraftRejectsBadRange(t *testing.T) {
	pool := poolAt(t, 0)
	spacing := pool.Spacing()
	liquidity := NewLiquidity(ratio.MustParse("1000"))

	_, err := NewDraftFromLiquidity(pool, usable(t, 120, spacing), usable(t, 120, spacing), liquidity)
	requireField(t, err, "tickLower")

	_, err = NewDraftFromLiquidity(pool, usable(t, 180, spacing), usable(t, -180, spacing), liquidity)
	requireField(t, err, "tickLower")

	_, err = NewDraftFromAmounts(pool, usable(t, 240, spacing), usable(t, 60, spacing), NewAmount0(ratio.One), Amount1{})
	requireField(t, err, "tickLower")

	narrow := tickmath.FeeLow.TickSpacing()
	_, err = NewDraftFromLiquidity(pool, usable(t, -120, narrow), usable(t, 120, spacing), liquidity)
	requireField(t, err, "tickLower")

	_, err = NewDraftFromLiquidity(pool, usable(t, -120, spacing), usable(t, 130, narrow), liquidity)
	requireField(t, err, "tickUpper")
}

func TestNewDraftRejectsEmptyInputs(t *testing.T) {
	pool := poolAt(t, 0)
	spacing := pool.Spacing()
	lower, upper := usable(t, -120, spacing), usable(t, 120, spacing)

	_, err := NewDraftFromAmounts(pool, lower, upper, Amount0{}, Amount1{})
	requireField(t, err, "amounts")

	_, err = NewDraftFromLiquidity(pool, lower, upper, Liquidity{})
	requireField(t, err, "liquidity")

	// Only token1 offered for a range that sits wholly above the price.
	_, err = NewDraftFromAmounts(pool, usable(t, 60, spacing), upper, Amount0{}, NewAmount1(ratio.MustParse("5000000")))
	requireField(t, err, "amounts")
}

func TestNewDraftFromAmounts(t *testing.T) {
	pool := poolAt(t, -196200)
	spacing := pool.Spacing()
	lower, upper := usable(t, -198000, spacing), usable(t, -194400, spacing)

	amount0 := NewAmount0(ratio.MustParse("1000000000000000000"))
	amount1 := NewAmount1(ratio.MustParse("2000000000"))

	d, err := NewDraftFromAmounts(pool, lower, upper, amount0, amount1)
	require.NoError(t, err)
	assert.Equal(t, InRange, d.Case())
	assert.Equal(t, poolAddr, d.Pool())
	assert.Equal(t, -196200, d.TickCurrent().Int())
	assert.Equal(t, lower, d.TickLower())
	assert.Equal(t, upper, d.TickUpper())
	assert.True(t, d.SqrtRatio().Equal(pool.SqrtRatio()))

	slack := ratio.MustParse("1e-30")
	assert.True(t, d.Amount0().Ratio().Cmp(amount0.Ratio().Add(slack)) <= 0)
	assert.True(t, d.Amount1().Ratio().Cmp(amount1.Ratio().Add(slack)) <= 0)

	// One side binds: it is used up to rounding.
	used0 := d.Amount0().Ratio().AbsDiff(amount0.Ratio()).LessThan(ratio.MustParse("1e-20"))
	used1 := d.Amount1().Ratio().AbsDiff(amount1.Ratio()).LessThan(ratio.MustParse("1e-20"))
	assert.True(t, used0 || used1)
}

func TestDraftLiquidityRoundTrip(t *testing.T) {
	pool := poolAt(t, 1234)
	spacing := pool.Spacing()
	lower, upper := usable(t, 600, spacing), usable(t, 1800, spacing)
	liquidity := NewLiquidity(ratio.MustParse("123456789012345678"))

	d, err := NewDraftFromLiquidity(pool, lower, upper, liquidity)
	require.NoError(t, err)

	back, err := NewDraftFromAmounts(pool, lower, upper, d.Amount0(), d.Amount1())
	require.NoError(t, err)
	diff := back.Liquidity().Ratio().AbsDiff(liquidity.Ratio())
	assert.True(t, diff.LessThan(ratio.MustParse("1e-20")), "liquidity drifted by %s", diff)
}

func TestMintRounding(t *testing.T) {
	pool := poolAt(t, 10)
	spacing := pool.Spacing()
	d, err := NewDraftFromLiquidity(pool, usable(t, -60, spacing), usable(t, 60, spacing), NewLiquidity(ratio.MustParse("1000000.75")))
	require.NoError(t, err)

	mint0, mint1 := d.MintAmounts()
	for _, c := range []struct {
		mint  *big.Int
		exact ratio.Ratio
	}{{mint0, d.Amount0().Ratio()}, {mint1, d.Amount1().Ratio()}} {
		m := decimal.NewFromBigInt(c.mint, 0)
		assert.True(t, m.GreaterThanOrEqual(c.exact.Decimal()))
		assert.True(t, m.Sub(c.exact.Decimal()).LessThan(decimal.NewFromInt(1)))
	}
	assert.Equal(t, "1000000", d.MintLiquidity().String())
}

func TestPoolFromSlot0(t *testing.T) {
	slot0 := model.PoolSlot0{SqrtPriceX96: tickmath.Q96.String(), Tick: 0, ObservationIndex: "7"}

	pool, err := PoolFromSlot0(poolAddr, tickmath.FeeLow, slot0, usdc, weth)
	require.NoError(t, err)
	assert.Equal(t, weth, pool.Token0())
	assert.Equal(t, usdc, pool.Token1())
	assert.True(t, pool.SqrtRatio().Equal(ratio.One))
	assert.Equal(t, 10, pool.Spacing().Int())

	_, err = PoolFromSlot0(poolAddr, tickmath.FeeLow, model.PoolSlot0{SqrtPriceX96: "0x10"}, weth, usdc)
	requireField(t, err, "sqrtPriceX96")

	_, err = PoolFromSlot0(poolAddr, tickmath.FeeLow, model.PoolSlot0{SqrtPriceX96: "1"}, weth, usdc)
	requireField(t, err, "sqrtRatio")

	_, err = PoolFromSlot0(poolAddr, tickmath.FeeLow, model.PoolSlot0{SqrtPriceX96: tickmath.Q96.String(), Tick: 900000}, weth, usdc)
	assert.ErrorIs(t, err, tickmath.ErrTickOutOfRange)
}

func TestSymmetricRange(t *testing.T) {
	spacing := tickmath.FeeMedium.TickSpacing()

	lower, upper, ok := SymmetricRange(tickmath.MustTick(125), spacing, 2)
	require.True(t, ok)
	assert.Equal(t, 0, lower.Int())
	assert.Equal(t, 240, upper.Int())

	lower, upper, ok = SymmetricRange(tickmath.MustTick(tickmath.MaxTick), spacing, 5)
	require.True(t, ok)
	assert.Equal(t, 886920, lower.Int())
	assert.Equal(t, 887220, upper.Int())

	_, _, ok = SymmetricRange(tickmath.MustTick(0), spacing, 0)
	assert.False(t, ok)
}

func TestLiquidityFromBig(t *testing.T) {
	l, err := LiquidityFromBig(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, "42", l.String())

	_, err = LiquidityFromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, ratio.ErrNegative)
}
