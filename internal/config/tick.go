package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// TickConfig holds configuration for the offline tick command. Exactly one
// of Tick, Price and SqrtPriceX96 is set.
type TickConfig struct {
	Tick         *int
	Price        string
	SqrtPriceX96 string
	Fee          uint32
	Decimals0    uint8
	Decimals1    uint8
	LogLevel     string
}

func LoadTick(cfgFile string, flags *pflag.FlagSet) (TickConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"fee":       3000,
		"decimals0": 18,
		"decimals1": 18,
		"log-level": "info",
	})
	if err != nil {
		return TickConfig{}, err
	}

	tick, err := optionalInt(v, "tick")
	if err != nil {
		return TickConfig{}, err
	}

	d0, d1 := v.GetUint("decimals0"), v.GetUint("decimals1")
	if d0 > 255 || d1 > 255 {
		return TickConfig{}, fmt.Errorf("decimals must fit in a uint8")
	}

	cfg := TickConfig{
		Tick:         tick,
		Price:        v.GetString("price"),
		SqrtPriceX96: v.GetString("sqrt-price-x96"),
		Fee:          v.GetUint32("fee"),
		Decimals0:    uint8(d0),
		Decimals1:    uint8(d1),
		LogLevel:     v.GetString("log-level"),
	}

	inputs := 0
	if cfg.Tick != nil {
		inputs++
	}
	if cfg.Price != "" {
		inputs++
	}
	if cfg.SqrtPriceX96 != "" {
		inputs++
	}
	if inputs != 1 {
		return TickConfig{}, fmt.Errorf("set exactly one of tick, price or sqrt-price-x96")
	}
	return cfg, nil
}
