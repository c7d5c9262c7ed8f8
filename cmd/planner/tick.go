package main

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangePlanner/internal/config"
	"rangePlanner/internal/price"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

type tickReport struct {
	Tick              int    `json:"tick"`
	SqrtRatio         string `json:"sqrt_ratio"`
	SqrtPriceX96      string `json:"sqrt_price_x96,omitempty"`
	Price             string `json:"price"`
	FlippedPrice      string `json:"flipped_price"`
	TickSpacing       int    `json:"tick_spacing"`
	NearestUsableTick int    `json:"nearest_usable_tick"`
	MinUsableTick     int    `json:"min_usable_tick"`
	MaxUsableTick     int    `json:"max_usable_tick"`
}

func runTick(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTick(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	report, err := buildTickReport(cfg)
	if err != nil {
		return err
	}
	logger.Debug("tick report", zap.Int("tick", report.Tick), zap.String("price", report.Price))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// buildTickReport works on a placeholder pair: only decimals matter offline.
func buildTickReport(cfg config.TickConfig) (tickReport, error) {
	fee, err := tickmath.ParseFeeTier(cfg.Fee)
	if err != nil {
		return tickReport{}, err
	}
	spacing := fee.TickSpacing()

	token0 := price.Token{Address: common.BigToAddress(big.NewInt(1)), Decimals: cfg.Decimals0, Symbol: "token0"}
	token1 := price.Token{Address: common.BigToAddress(big.NewInt(2)), Decimals: cfg.Decimals1, Symbol: "token1"}

	var (
		p    price.TokenPrice
		tick tickmath.Tick
	)
	switch {
	case cfg.Tick != nil:
		tick, err = tickmath.NewTick(*cfg.Tick)
		if err != nil {
			return tickReport{}, err
		}
		p, err = price.FromTick(token0, token1, tick)
	case cfg.Price != "":
		var units ratio.Ratio
		units, err = ratio.Parse(cfg.Price)
		if err != nil {
			return tickReport{}, err
		}
		p, err = price.FromUnits(token0, token1, units)
		if err == nil {
			tick = p.Tick()
		}
	default:
		sqrtX96, ok := new(big.Int).SetString(cfg.SqrtPriceX96, 10)
		if !ok {
			return tickReport{}, fmt.Errorf("invalid sqrt-price-x96: %s", cfg.SqrtPriceX96)
		}
		p, err = price.FromSqrtQ64x96(token0, token1, sqrtX96)
		if err == nil {
			tick = p.Tick()
		}
	}
	if err != nil {
		return tickReport{}, err
	}

	report := tickReport{
		Tick:              tick.Int(),
		SqrtRatio:         p.AsSqrt().String(),
		Price:             p.AsUnits().String(),
		FlippedPrice:      p.AsFlippedUnits().String(),
		TickSpacing:       spacing.Int(),
		NearestUsableTick: tickmath.NearestUsableTick(tick, spacing).Int(),
		MinUsableTick:     tickmath.MinUsableTick(spacing).Int(),
		MaxUsableTick:     tickmath.MaxUsableTick(spacing).Int(),
	}
	if sqrtX96, ok := p.AsSqrtQ64x96(); ok {
		report.SqrtPriceX96 = sqrtX96.String()
	}
	return report, nil
}
