package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangePlanner/internal/model"
	"rangePlanner/internal/position"
	"rangePlanner/internal/price"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

// PoolReader supplies pool and token state. dex.Reader implements it.
type PoolReader interface {
	ChainID() uint64
	Pool(ctx context.Context, address common.Address, block uint64) (model.PoolMeta, error)
	Token(ctx context.Context, address common.Address) (model.TokenMeta, error)
}

// Sink receives the records of sized drafts.
type Sink interface {
	PutDraftBatch(drafts []model.PositionDraftRecord) error
}

// Request describes the drafts to size for one pool. Either both ticks or
// Widths (in tick spacings around the current tick) select the ranges.
// Amounts are human units of the pool's token0 and token1; a non-nil
// Liquidity sizes by liquidity instead.
type Request struct {
	Pool      common.Address
	Block     uint64
	BlockTime uint64

	TickLower *int
	TickUpper *int
	Widths    []int

	Amount0   ratio.Ratio
	Amount1   ratio.Ratio
	Liquidity *ratio.Ratio
}

type Service struct {
	reader PoolReader
	sink   Sink
	logger *zap.Logger
}

// NewService wires the collaborators. sink may be nil when records are
// only returned.
func NewService(reader PoolReader, sink Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, sink: sink, logger: logger}
}

// LoadPool reads slot0 and both tokens and builds the priced pool.
func (s *Service) LoadPool(ctx context.Context, address common.Address, block uint64) (position.Pool, error) {
	meta, err := s.reader.Pool(ctx, address, block)
	if err != nil {
		return position.Pool{}, fmt.Errorf("load pool %s: %w", address.Hex(), err)
	}
	if meta.Slot0 == nil {
		return position.Pool{}, fmt.Errorf("pool %s: slot0 unavailable", address.Hex())
	}

	fee, err := tickmath.ParseFeeTier(meta.Fee)
	if err != nil {
		return position.Pool{}, fmt.Errorf("pool %s: %w", address.Hex(), err)
	}
	if spacing := fee.TickSpacing(); spacing.Int32() != meta.TickSpacing {
		return position.Pool{}, fmt.Errorf("pool %s: tick spacing %d does not match fee %d (want %d)",
			address.Hex(), meta.TickSpacing, meta.Fee, spacing.Int())
	}

	token0, err := s.token(ctx, meta.Token0)
	if err != nil {
		return position.Pool{}, err
	}
	token1, err := s.token(ctx, meta.Token1)
	if err != nil {
		return position.Pool{}, err
	}

	return position.PoolFromSlot0(address, fee, *meta.Slot0, token0, token1)
}

func (s *Service) token(ctx context.Context, address string) (price.Token, error) {
	if !common.IsHexAddress(address) {
		return price.Token{}, fmt.Errorf("invalid token address: %s", address)
	}
	meta, err := s.reader.Token(ctx, common.HexToAddress(address))
	if err != nil {
		return price.Token{}, fmt.Errorf("load token %s: %w", address, err)
	}
	return price.TokenFromMeta(meta)
}

type bounds struct {
	lower tickmath.UsableTick
	upper tickmath.UsableTick
}

func (s *Service) ranges(pool position.Pool, req Request) ([]bounds, error) {
	spacing := pool.Spacing()
	if req.TickLower != nil || req.TickUpper != nil {
		if req.TickLower == nil || req.TickUpper == nil {
			return nil, fmt.Errorf("tick lower and upper must be set together")
		}
		lower, err := usable(*req.TickLower, spacing, "tickLower")
		if err != nil {
			return nil, err
		}
		upper, err := usable(*req.TickUpper, spacing, "tickUpper")
		if err != nil {
			return nil, err
		}
		return []bounds{{lower, upper}}, nil
	}

	if len(req.Widths) == 0 {
		return nil, fmt.Errorf("no range requested")
	}
	out := make([]bounds, 0, len(req.Widths))
	for _, w := range req.Widths {
		lower, upper, ok := position.SymmetricRange(pool.Tick, spacing, w)
		if !ok {
			return nil, model.NewValidationError("widths", fmt.Sprint(w), "must be positive")
		}
		out = append(out, bounds{lower, upper})
	}
	return out, nil
}

func usable(v int, spacing tickmath.TickSpacing, field string) (tickmath.UsableTick, error) {
	t, err := tickmath.NewTick(v)
	if err != nil {
		return tickmath.UsableTick{}, model.NewValidationError(field, fmt.Sprint(v), err.Error())
	}
	u, err := tickmath.NewUsableTick(t, spacing)
	if err != nil {
		return tickmath.UsableTick{}, model.NewValidationError(field, fmt.Sprint(v), err.Error())
	}
	return u, nil
}

// Quote sizes one draft per requested range. With several widths, a range
// the inputs cannot fund is logged and skipped; the call fails only when
// nothing could be sized.
func (s *Service) Quote(ctx context.Context, req Request) (position.Pool, []position.Draft, error) {
	pool, err := s.LoadPool(ctx, req.Pool, req.Block)
	if err != nil {
		return position.Pool{}, nil, err
	}
	ranges, err := s.ranges(pool, req)
	if err != nil {
		return position.Pool{}, nil, err
	}

	drafts := make([]position.Draft, 0, len(ranges))
	var lastErr error
	for _, b := range ranges {
		d, err := s.size(pool, b, req)
		if err != nil {
			var verr *model.ValidationError
			if len(ranges) == 1 || !errors.As(err, &verr) {
				return position.Pool{}, nil, err
			}
			s.logger.Warn("range skipped",
				zap.String("pool", req.Pool.Hex()),
				zap.Int("tick_lower", b.lower.Int()),
				zap.Int("tick_upper", b.upper.Int()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		drafts = append(drafts, d)
	}
	if len(drafts) == 0 {
		return position.Pool{}, nil, fmt.Errorf("no range could be sized: %w", lastErr)
	}
	return pool, drafts, nil
}

func (s *Service) size(pool position.Pool, b bounds, req Request) (position.Draft, error) {
	if req.Liquidity != nil {
		return position.NewDraftFromLiquidity(pool, b.lower, b.upper, position.NewLiquidity(*req.Liquidity))
	}
	amount0 := position.NewAmount0(price.ToRaw(pool.Token0(), req.Amount0))
	amount1 := position.NewAmount1(price.ToRaw(pool.Token1(), req.Amount1))
	return position.NewDraftFromAmounts(pool, b.lower, b.upper, amount0, amount1)
}

// Record flattens a draft into its storage form. Amounts are rounded up
// and liquidity down to whole units, as a mint call would take them.
func (s *Service) Record(pool position.Pool, d position.Draft, block, blockTime uint64) model.PositionDraftRecord {
	mint0, mint1 := d.MintAmounts()
	rec := model.PositionDraftRecord{
		ChainID:      s.reader.ChainID(),
		Pool:         pool.Address.Hex(),
		Token0:       pool.Token0().Address.Hex(),
		Token1:       pool.Token1().Address.Hex(),
		Fee:          uint32(pool.Fee),
		TickSpacing:  pool.Spacing().Int32(),
		BlockNumber:  block,
		BlockTime:    blockTime,
		TickLower:    d.TickLower().Tick().Int32(),
		TickUpper:    d.TickUpper().Tick().Int32(),
		TickCurrent:  d.TickCurrent().Int32(),
		RangeCase:    d.Case().String(),
		Price:        pool.Price.AsUnits().String(),
		Liquidity:    d.MintLiquidity().String(),
		Amount0:      mint0.String(),
		Amount1:      mint1.String(),
		Amount0Human: price.FormatAmount(mint0, pool.Token0().Decimals),
		Amount1Human: price.FormatAmount(mint1, pool.Token1().Decimals),
	}
	if sqrtX96, ok := price.EncodeQ64x96(d.SqrtRatio()); ok {
		rec.SqrtPriceX96 = sqrtX96.String()
	}
	return rec
}

// Run quotes, records and hands the batch to the sink.
func (s *Service) Run(ctx context.Context, req Request) ([]model.PositionDraftRecord, error) {
	pool, drafts, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	records := make([]model.PositionDraftRecord, 0, len(drafts))
	for _, d := range drafts {
		records = append(records, s.Record(pool, d, req.Block, req.BlockTime))
	}

	if s.sink != nil {
		if err := s.sink.PutDraftBatch(records); err != nil {
			return nil, fmt.Errorf("store drafts: %w", err)
		}
	}

	s.logger.Info("drafts sized",
		zap.String("pool", req.Pool.Hex()),
		zap.Uint64("block", req.Block),
		zap.Int("tick", pool.Tick.Int()),
		zap.String("price", pool.Price.String()),
		zap.Int("drafts", len(records)),
	)
	return records, nil
}
