package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	RPCURL       string
	Pool         string
	Block        uint64
	TickLower    *int
	TickUpper    *int
	Widths       []int
	Amount0      string
	Amount1      string
	Liquidity    string
	Out          string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out":           "./data/drafts.jsonl",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	lower, err := optionalInt(v, "tick-lower")
	if err != nil {
		return QuoteConfig{}, err
	}
	upper, err := optionalInt(v, "tick-upper")
	if err != nil {
		return QuoteConfig{}, err
	}
	widths, err := getIntSlice(v, "widths")
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		RPCURL:       v.GetString("rpc"),
		Pool:         v.GetString("pool"),
		Block:        v.GetUint64("block"),
		TickLower:    lower,
		TickUpper:    upper,
		Widths:       widths,
		Amount0:      v.GetString("amount0"),
		Amount1:      v.GetString("amount1"),
		Liquidity:    v.GetString("liquidity"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}
	return cfg, cfg.Validate()
}

// Validate checks the combinations the quote command accepts: either an
// explicit range or widths, and either amounts or a liquidity target.
func (c QuoteConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Pool == "" {
		return fmt.Errorf("pool address is required")
	}

	explicit := c.TickLower != nil || c.TickUpper != nil
	switch {
	case explicit && (c.TickLower == nil || c.TickUpper == nil):
		return fmt.Errorf("tick-lower and tick-upper must be set together")
	case explicit && len(c.Widths) > 0:
		return fmt.Errorf("use either tick-lower/tick-upper or widths, not both")
	case !explicit && len(c.Widths) == 0:
		return fmt.Errorf("a range is required: tick-lower/tick-upper or widths")
	}
	for _, w := range c.Widths {
		if w <= 0 {
			return fmt.Errorf("widths must be positive, got %d", w)
		}
	}

	amounts := c.Amount0 != "" || c.Amount1 != ""
	if amounts == (c.Liquidity != "") {
		return fmt.Errorf("set either amount0/amount1 or liquidity")
	}
	return nil
}
