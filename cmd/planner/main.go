package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "planner",
		Short:        "Concentrated-liquidity range planner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Convert between tick, price and sqrtPriceX96 offline",
		RunE:  runTick,
	}

	tickCmd.Flags().String("tick", "", "tick index")
	tickCmd.Flags().String("price", "", "human price of token1 in token0")
	tickCmd.Flags().String("sqrt-price-x96", "", "pool sqrtPriceX96")
	tickCmd.Flags().Uint32("fee", 3000, "fee tier (100, 500, 3000, 10000)")
	tickCmd.Flags().Uint("decimals0", 18, "token0 decimals")
	tickCmd.Flags().Uint("decimals1", 18, "token1 decimals")
	tickCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(tickCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Size position drafts against a live pool",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "RPC URL")
	quoteCmd.Flags().String("pool", "", "pool address")
	quoteCmd.Flags().Uint64("block", 0, "block to read slot0 at, 0 means latest")
	quoteCmd.Flags().String("tick-lower", "", "explicit lower tick (usable)")
	quoteCmd.Flags().String("tick-upper", "", "explicit upper tick (usable)")
	quoteCmd.Flags().StringSlice("widths", nil, "range half-widths in tick spacings (comma-separated)")
	quoteCmd.Flags().String("amount0", "", "max token0 to deposit, human units")
	quoteCmd.Flags().String("amount1", "", "max token1 to deposit, human units")
	quoteCmd.Flags().String("liquidity", "", "target liquidity instead of amounts")
	quoteCmd.Flags().String("out", "./data/drafts.jsonl", "output JSONL path")
	quoteCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	quoteCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	quoteCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
