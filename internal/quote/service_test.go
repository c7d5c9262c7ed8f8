package quote

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rangePlanner/internal/model"
	"rangePlanner/internal/price"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

const poolTick = 193380

var (
	poolAddr = common.HexToAddress("0x8ad599c3A0ff1De082011EFDDc58f1908eb6e6D8")
	usdcAddr = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	wethAddr = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

type fakeReader struct {
	meta    model.PoolMeta
	tokens  map[common.Address]model.TokenMeta
	poolErr error
	blocks  []uint64
}

func (f *fakeReader) ChainID() uint64 { return 1 }

func (f *fakeReader) Pool(_ context.Context, _ common.Address, block uint64) (model.PoolMeta, error) {
	f.blocks = append(f.blocks, block)
	if f.poolErr != nil {
		return model.PoolMeta{}, f.poolErr
	}
	return f.meta, nil
}

func (f *fakeReader) Token(_ context.Context, address common.Address) (model.TokenMeta, error) {
	meta, ok := f.tokens[address]
	if !ok {
		return model.TokenMeta{}, errors.New("execution reverted")
	}
	return meta, nil
}

type fakeSink struct {
	batches [][]model.PositionDraftRecord
	err     error
}

func (f *fakeSink) PutDraftBatch(drafts []model.PositionDraftRecord) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, drafts)
	return nil
}

func sqrtAt(t *testing.T, tick int) *big.Int {
	t.Helper()
	v, ok := price.EncodeQ64x96(tickmath.GetSqrtRatio(tickmath.MustTick(tick)))
	require.True(t, ok)
	return v
}

func newReader(t *testing.T) *fakeReader {
	t.Helper()
	return &fakeReader{
		meta: model.PoolMeta{
			Token0:      usdcAddr.Hex(),
			Token1:      wethAddr.Hex(),
			Fee:         3000,
			TickSpacing: 60,
			Slot0: &model.PoolSlot0{
				SqrtPriceX96:     sqrtAt(t, poolTick).String(),
				Tick:             poolTick,
				ObservationIndex: "12",
			},
		},
		tokens: map[common.Address]model.TokenMeta{
			usdcAddr: {Address: usdcAddr.Hex(), Decimals: 6, Symbol: "USDC"},
			wethAddr: {Address: wethAddr.Hex(), Decimals: 18, Symbol: "WETH"},
		},
	}
}

func intPtr(v int) *int { return &v }

func bigString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, s)
	return v
}

func TestRunWidths(t *testing.T) {
	reader := newReader(t)
	sink := &fakeSink{}
	svc := NewService(reader, sink, zap.NewNop())

	records, err := svc.Run(context.Background(), Request{
		Pool:      poolAddr,
		Block:     19000000,
		BlockTime: 1700000000,
		Widths:    []int{5, 10},
		Amount0:   ratio.MustParse("1000"),
		Amount1:   ratio.MustParse("0.5"),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, sink.batches, 1)
	assert.Equal(t, records, sink.batches[0])
	assert.Equal(t, []uint64{19000000}, reader.blocks)

	assert.Equal(t, int32(193080), records[0].TickLower)
	assert.Equal(t, int32(193680), records[0].TickUpper)
	assert.Equal(t, int32(192780), records[1].TickLower)
	assert.Equal(t, int32(193980), records[1].TickUpper)

	cap0 := bigString(t, "1000000001")
	cap1 := bigString(t, "500000000000000001")
	for _, rec := range records {
		assert.Equal(t, uint64(1), rec.ChainID)
		assert.Equal(t, poolAddr.Hex(), rec.Pool)
		assert.Equal(t, usdcAddr.Hex(), rec.Token0)
		assert.Equal(t, uint32(3000), rec.Fee)
		assert.Equal(t, int32(60), rec.TickSpacing)
		assert.Equal(t, int32(poolTick), rec.TickCurrent)
		assert.Equal(t, "in", rec.RangeCase)
		assert.Equal(t, uint64(1700000000), rec.BlockTime)
		assert.Equal(t, sqrtAt(t, poolTick).String(), rec.SqrtPriceX96)

		a0, a1 := bigString(t, rec.Amount0), bigString(t, rec.Amount1)
		assert.Equal(t, 1, a0.Sign())
		assert.Equal(t, 1, a1.Sign())
		assert.LessOrEqual(t, a0.Cmp(cap0), 0)
		assert.LessOrEqual(t, a1.Cmp(cap1), 0)
		assert.Equal(t, price.FormatAmount(a0, 6), rec.Amount0Human)
		assert.Equal(t, 1, bigString(t, rec.Liquidity).Sign())
	}

	// A narrower range needs more liquidity for the same binding amount.
	assert.Equal(t, 1, bigString(t, records[0].Liquidity).Cmp(bigString(t, records[1].Liquidity)))
}

func TestQuoteExplicitRangeMustBeUsable(t *testing.T) {
	svc := NewService(newReader(t), nil, nil)
	_, _, err := svc.Quote(context.Background(), Request{
		Pool:      poolAddr,
		TickLower: intPtr(193381),
		TickUpper: intPtr(193680),
		Amount0:   ratio.One,
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tickLower", verr.Field)
}

func TestQuoteInvertedRange(t *testing.T) {
	svc := NewService(newReader(t), nil, nil)
	_, _, err := svc.Quote(context.Background(), Request{
		Pool:      poolAddr,
		TickLower: intPtr(193680),
		TickUpper: intPtr(193080),
		Amount0:   ratio.One,
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tickLower", verr.Field)
}

func TestRunLiquidityBelowRange(t *testing.T) {
	svc := NewService(newReader(t), nil, zap.NewNop())
	liquidity := ratio.MustParse("1000000000000000")

	records, err := svc.Run(context.Background(), Request{
		Pool:      poolAddr,
		TickLower: intPtr(193680),
		TickUpper: intPtr(194400),
		Liquidity: &liquidity,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "below", rec.RangeCase)
	assert.Equal(t, "0", rec.Amount1)
	assert.Equal(t, 1, bigString(t, rec.Amount0).Sign())
	assert.Equal(t, "1000000000000000", rec.Liquidity)
}

func TestQuoteSkipsUnfundableWidths(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(newReader(t), nil, zap.New(core))

	// Only token1 for ranges that straddle the price: token0 binds at zero.
	_, _, err := svc.Quote(context.Background(), Request{
		Pool:    poolAddr,
		Widths:  []int{2, 4},
		Amount1: ratio.One,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, 2, logs.FilterMessage("range skipped").Len())
}

func TestLoadPoolErrors(t *testing.T) {
	boom := errors.New("rpc down")
	reader := newReader(t)
	reader.poolErr = boom
	_, err := NewService(reader, nil, nil).LoadPool(context.Background(), poolAddr, 0)
	assert.ErrorIs(t, err, boom)

	reader = newReader(t)
	reader.meta.Slot0 = nil
	_, err = NewService(reader, nil, nil).LoadPool(context.Background(), poolAddr, 0)
	assert.ErrorContains(t, err, "slot0 unavailable")

	reader = newReader(t)
	reader.meta.TickSpacing = 10
	_, err = NewService(reader, nil, nil).LoadPool(context.Background(), poolAddr, 0)
	assert.ErrorContains(t, err, "does not match fee")

	reader = newReader(t)
	reader.meta.Fee = 2500
	_, err = NewService(reader, nil, nil).LoadPool(context.Background(), poolAddr, 0)
	assert.ErrorIs(t, err, tickmath.ErrUnknownFeeTier)

	reader = newReader(t)
	delete(reader.tokens, wethAddr)
	_, err = NewService(reader, nil, nil).LoadPool(context.Background(), poolAddr, 0)
	assert.ErrorContains(t, err, "load token")
}

func TestLoadPool(t *testing.T) {
	pool, err := NewService(newReader(t), nil, nil).LoadPool(context.Background(), poolAddr, 0)
	require.NoError(t, err)
	assert.Equal(t, "USDC", pool.Token0().Symbol)
	assert.Equal(t, "WETH", pool.Token1().Symbol)
	assert.Equal(t, poolTick, pool.Tick.Int())
	assert.Equal(t, 60, pool.Spacing().Int())

	// Roughly 4000 USDC per WETH.
	q, ok := pool.Price.Quote(pool.Token1())
	require.True(t, ok)
	assert.InDelta(t, 4000, q.Decimal().InexactFloat64(), 5)
}

func TestRunSinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	svc := NewService(newReader(t), sink, nil)
	_, err := svc.Run(context.Background(), Request{Pool: poolAddr, Widths: []int{5}, Amount0: ratio.MustParse("100")})
	assert.ErrorContains(t, err, "store drafts")
}
