package price

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"rangePlanner/internal/model"
	"rangePlanner/internal/ratio"
)

// Token identifies an ERC20 by address. Decimals scales raw amounts to
// human units.
type Token struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
}

// TokenFromMeta converts fetched ERC20 metadata.
func TokenFromMeta(meta model.TokenMeta) (Token, error) {
	if !common.IsHexAddress(meta.Address) {
		return Token{}, fmt.Errorf("invalid token address: %s", meta.Address)
	}
	return Token{
		Address:  common.HexToAddress(meta.Address),
		Decimals: meta.Decimals,
		Symbol:   meta.Symbol,
	}, nil
}

// Less orders tokens by address bytes, the order pools use for token0/token1.
func (t Token) Less(o Token) bool {
	return bytes.Compare(t.Address.Bytes(), o.Address.Bytes()) < 0
}

// Same reports whether both refer to the same contract.
func (t Token) Same(o Token) bool {
	return t.Address == o.Address
}

func (t Token) String() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address.Hex()
}

// ToRaw converts a human amount into base units (not truncated).
func ToRaw(t Token, human ratio.Ratio) ratio.Ratio {
	return human.Shift(int32(t.Decimals))
}

// FromRaw converts base units into a human amount.
func FromRaw(t Token, raw ratio.Ratio) ratio.Ratio {
	return raw.Shift(-int32(t.Decimals))
}

// FormatAmount renders a base-unit integer with the token's decimals.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).StringFixed(int32(decimals))
}
