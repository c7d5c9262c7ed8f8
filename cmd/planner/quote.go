package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangePlanner/internal/chain"
	"rangePlanner/internal/config"
	"rangePlanner/internal/dex"
	"rangePlanner/internal/quote"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/storage"
	"rangePlanner/internal/storage/postgres"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !common.IsHexAddress(cfg.Pool) {
		return fmt.Errorf("invalid pool address: %s", cfg.Pool)
	}

	req, err := buildRequest(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var chainID uint64
	err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		chainID, err = chainClient.ChainID(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}

	if req.Block == 0 {
		err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
			req.Block, err = chainClient.LatestBlockNumber(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}
	if ts, err := chainClient.BlockTimestamp(ctx, req.Block); err == nil {
		req.BlockTime = ts
	} else {
		logger.Warn("block timestamp unavailable", zap.Uint64("block", req.Block), zap.Error(err))
	}

	sinks := storage.MultiSink{storage.NewJsonlStorage(cfg.Out)}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store.DraftSink(ctx))
	}

	reader := dex.NewReader(chainClient, dex.ReaderConfig{
		ChainID:      chainID,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	svc := quote.NewService(reader, sinks, logger)

	logger.Info("quote start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("chain_id", chainID),
		zap.String("pool", req.Pool.Hex()),
		zap.Uint64("block", req.Block),
		zap.Ints("widths", cfg.Widths),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	records, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	for _, rec := range records {
		logger.Info("draft",
			zap.Int32("tick_lower", rec.TickLower),
			zap.Int32("tick_upper", rec.TickUpper),
			zap.String("range_case", rec.RangeCase),
			zap.String("liquidity", rec.Liquidity),
			zap.String("amount0", rec.Amount0Human),
			zap.String("amount1", rec.Amount1Human),
		)
	}
	return nil
}

func buildRequest(cfg config.QuoteConfig) (quote.Request, error) {
	req := quote.Request{
		Pool:      common.HexToAddress(cfg.Pool),
		Block:     cfg.Block,
		TickLower: cfg.TickLower,
		TickUpper: cfg.TickUpper,
		Widths:    cfg.Widths,
	}

	var err error
	if req.Amount0, err = parseAmount("amount0", cfg.Amount0); err != nil {
		return quote.Request{}, err
	}
	if req.Amount1, err = parseAmount("amount1", cfg.Amount1); err != nil {
		return quote.Request{}, err
	}
	if cfg.Liquidity != "" {
		liquidity, err := ratio.Parse(cfg.Liquidity)
		if err != nil {
			return quote.Request{}, fmt.Errorf("liquidity: %w", err)
		}
		req.Liquidity = &liquidity
	}
	return req, nil
}

func parseAmount(name, value string) (ratio.Ratio, error) {
	if value == "" {
		return ratio.Zero, nil
	}
	r, err := ratio.Parse(value)
	if err != nil {
		return ratio.Zero, fmt.Errorf("%s: %w", name, err)
	}
	return r, nil
}
