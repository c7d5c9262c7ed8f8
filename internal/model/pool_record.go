package model

// PoolRecord is the pools-table row upserted with every batch of drafts.
// FirstQuotedBlock only ever moves backwards.
type PoolRecord struct {
	ChainID          uint64 `json:"chain_id"`
	Address          string `json:"address"`
	Token0           string `json:"token0"`
	Token1           string `json:"token1"`
	Fee              uint32 `json:"fee"`
	TickSpacing      int32  `json:"tick_spacing"`
	FirstQuotedBlock uint64 `json:"first_quoted_block"`
}
