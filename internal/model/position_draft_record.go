package model

// PositionDraftRecord is a sized position ready for a mint call, flattened
// for JSONL and Postgres. Integer amounts are base-10 strings in base units;
// the *Human fields carry the same amounts scaled by token decimals.
type PositionDraftRecord struct {
	ChainID      uint64 `json:"chain_id"`
	Pool         string `json:"pool"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  int32  `json:"tick_spacing"`
	BlockNumber  uint64 `json:"block_number"`
	BlockTime    uint64 `json:"block_time,omitempty"`
	TickLower    int32  `json:"tick_lower"`
	TickUpper    int32  `json:"tick_upper"`
	TickCurrent  int32  `json:"tick_current"`
	RangeCase    string `json:"range_case"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Price        string `json:"price"`
	Liquidity    string `json:"liquidity"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	Amount0Human string `json:"amount0_human"`
	Amount1Human string `json:"amount1_human"`
}
