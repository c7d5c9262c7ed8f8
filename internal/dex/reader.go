package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangePlanner/internal/chain"
	"rangePlanner/internal/model"
)

// Caller performs eth_call. *chain.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type ReaderConfig struct {
	ChainID      uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Reader loads pool and token state through view calls. Immutable metadata
// is cached per address; slot0 and liquidity are read on every call.
type Reader struct {
	caller Caller
	cfg    ReaderConfig
	logger *zap.Logger

	pools  *cache[model.PoolMeta]
	tokens *cache[model.TokenMeta]
}

func NewReader(caller Caller, cfg ReaderConfig, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		caller: caller,
		cfg:    cfg,
		logger: logger,
		pools:  newCache[model.PoolMeta](),
		tokens: newCache[model.TokenMeta](),
	}
}

func (r *Reader) ChainID() uint64 { return r.cfg.ChainID }

// Pool returns the pool's metadata with slot0 and liquidity read at block.
// Block 0 reads the latest state.
func (r *Reader) Pool(ctx context.Context, address common.Address, block uint64) (model.PoolMeta, error) {
	if r.caller == nil {
		return model.PoolMeta{}, fmt.Errorf("chain caller is nil")
	}
	parsed, err := PoolABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	meta, ok := r.pools.Get(address)
	if !ok {
		meta, err = r.fetchPoolMeta(ctx, parsed, address)
		if err != nil {
			return model.PoolMeta{}, err
		}
		r.pools.Set(address, meta)
	}

	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}

	values, err := r.call(ctx, address, parsed, "slot0", blockPtr)
	if err != nil {
		return model.PoolMeta{}, err
	}
	slot0, err := decodeSlot0(values)
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("slot0 %s: %w", address.Hex(), err)
	}
	meta.Slot0 = &slot0

	if values, err := r.call(ctx, address, parsed, "liquidity", blockPtr); err == nil {
		if liq, err := asBigInt(values[0]); err == nil {
			meta.Liquidity = liq.String()
		}
	} else {
		r.logger.Debug("liquidity call failed", zap.String("pool", address.Hex()), zap.Error(err))
	}

	return meta, nil
}

func (r *Reader) fetchPoolMeta(ctx context.Context, parsed abi.ABI, pool common.Address) (model.PoolMeta, error) {
	values, err := r.call(ctx, pool, parsed, "token0", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token0: %w", err)
	}

	values, err = r.call(ctx, pool, parsed, "token1", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token1: %w", err)
	}

	values, err = r.call(ctx, pool, parsed, "fee", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	fee, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("fee: %w", err)
	}

	values, err = r.call(ctx, pool, parsed, "tickSpacing", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	spacingInt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}
	spacing, err := int24FromBig(spacingInt)
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}

	r.logger.Debug("pool metadata loaded",
		zap.String("pool", pool.Hex()),
		zap.String("token0", token0.Hex()),
		zap.String("token1", token1.Hex()),
		zap.Uint64("fee", fee.Uint64()),
	)

	return model.PoolMeta{
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(fee.Uint64()),
		TickSpacing: spacing,
	}, nil
}

// Token returns ERC20 metadata. Only successful lookups are cached.
func (r *Reader) Token(ctx context.Context, address common.Address) (model.TokenMeta, error) {
	if meta, ok := r.tokens.Get(address); ok {
		return meta, nil
	}
	meta, err := r.fetchTokenMeta(ctx, address)
	if err != nil {
		return meta, err
	}
	r.tokens.Set(address, meta)
	return meta, nil
}

func (r *Reader) fetchTokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}
	if r.caller == nil {
		return meta, fmt.Errorf("chain caller is nil")
	}

	stringABI, err := erc20StringABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := r.call(ctx, token, stringABI, "decimals", nil)
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, fmt.Errorf("decimals: %w", err)
	}
	meta.Decimals = decimals

	meta.Symbol = r.textField(ctx, token, "symbol", stringABI, bytes32ABI)
	meta.Name = r.textField(ctx, token, "name", stringABI, bytes32ABI)
	return meta, nil
}

// textField reads a string-or-bytes32 view; failures leave it empty.
func (r *Reader) textField(ctx context.Context, token common.Address, method string, stringABI, bytes32ABI abi.ABI) string {
	if values, err := r.call(ctx, token, stringABI, method, nil); err == nil {
		if s, ok := values[0].(string); ok {
			return s
		}
	}
	values, err := r.call(ctx, token, bytes32ABI, method, nil)
	if err != nil {
		r.logger.Debug(method+" call failed", zap.String("token", token.Hex()), zap.Error(err))
		return ""
	}
	s, _ := bytes32ToString(values[0])
	return s
}

func (r *Reader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, block *big.Int) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}

	var resp []byte
	err = chain.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var callErr error
		resp, callErr = r.caller.CallContract(ctx, msg, block)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

// decodeSlot0 maps the unpacked slot0 tuple. Only the leading
// sqrtPriceX96, tick and observationIndex fields are used.
func decodeSlot0(values []interface{}) (model.PoolSlot0, error) {
	if len(values) < 3 {
		return model.PoolSlot0{}, fmt.Errorf("expected at least 3 values, got %d", len(values))
	}
	sqrt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("tick: %w", err)
	}
	observation, err := asBigInt(values[2])
	if err != nil {
		return model.PoolSlot0{}, fmt.Errorf("observationIndex: %w", err)
	}
	return model.PoolSlot0{
		SqrtPriceX96:     sqrt.String(),
		Tick:             tick,
		ObservationIndex: observation.String(),
	}, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("uint8 overflow: %s", v.String())
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	if value.Cmp(minInt24) < 0 || value.Cmp(maxInt24) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}

var (
	minInt24 = big.NewInt(-1 << 23)
	maxInt24 = big.NewInt((1 << 23) - 1)
)
