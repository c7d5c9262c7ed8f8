package model

// PoolMeta is a pool's immutable metadata plus the live fields read with it.
type PoolMeta struct {
	Token0      string     `json:"token0"`
	Token1      string     `json:"token1"`
	Fee         uint32     `json:"fee"`
	TickSpacing int32      `json:"tick_spacing"`
	Liquidity   string     `json:"liquidity,omitempty"`
	Slot0       *PoolSlot0 `json:"slot0,omitempty"`
}

// PoolSlot0 is the part of slot0 a price is read from. Integers wider than
// 64 bits travel as base-10 strings.
type PoolSlot0 struct {
	SqrtPriceX96     string `json:"sqrt_price_x96"`
	Tick             int32  `json:"tick"`
	ObservationIndex string `json:"observation_index"`
}

// TokenMeta is what the ERC20 view calls return for one token. Symbol and
// Name are empty when the contract exposes neither string nor bytes32 forms.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}
