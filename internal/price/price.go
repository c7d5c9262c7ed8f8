package price

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"rangePlanner/internal/model"
	"rangePlanner/internal/ratio"
	"rangePlanner/internal/tickmath"
)

var ErrSameToken = errors.New("token0 and token1 must differ")

// maxUint160 is the largest sqrtPriceX96 a pool slot can hold.
var maxUint160 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))

// q96Resolution is the number of fractional digits of sqrt*2^96 that are
// still meaningful: 2^96 is just under 10^29.
const q96Resolution = ratio.Precision - 30

var q96Dec = decimal.NewFromBigInt(tickmath.Q96, 0)

// TokenPrice is the price of token1 in token0 for an ordered pair. The
// underlying value is raw: base units of token1 per base unit of token0.
type TokenPrice struct {
	token0 Token
	token1 Token
	value  Value
}

// Volume is a human-unit amount of one token.
type Volume struct {
	Token  Token
	Amount ratio.Ratio
}

func order(a, b Token) (Token, Token, bool, error) {
	if a.Same(b) {
		return Token{}, Token{}, false, fmt.Errorf("%w: %s", ErrSameToken, a.Address.Hex())
	}
	if b.Less(a) {
		return b, a, true, nil
	}
	return a, b, false, nil
}

// FromUnits builds a price from a human quote: units of quote per one base.
// It fails when the normalized price rounds to zero at token1's decimals.
func FromUnits(base, quote Token, units ratio.Ratio) (TokenPrice, error) {
	token0, token1, swapped, err := order(base, quote)
	if err != nil {
		return TokenPrice{}, err
	}

	human := units
	if swapped {
		inv, ok := units.Inverse()
		if !ok {
			return TokenPrice{}, model.NewValidationError("price", units.String(), "must be positive")
		}
		human = inv
	}
	if !human.Round(int32(token1.Decimals)).Decimal().IsPositive() {
		return TokenPrice{}, model.NewValidationError("price", units.String(),
			fmt.Sprintf("rounds to zero at %d decimals of %s", token1.Decimals, token1))
	}

	raw := human.Shift(int32(token1.Decimals) - int32(token0.Decimals))
	if raw.IsZero() {
		return TokenPrice{}, model.NewValidationError("price", units.String(), "raw ratio underflows precision")
	}
	return TokenPrice{token0: token0, token1: token1, value: Units{r: raw}}, nil
}

// FromSqrt builds a price from the square root of the raw quote-per-base
// ratio. The normalized root must lie in [MinSqrtRatio, MaxSqrtRatio).
func FromSqrt(base, quote Token, sqrt ratio.Ratio) (TokenPrice, error) {
	token0, token1, swapped, err := order(base, quote)
	if err != nil {
		return TokenPrice{}, err
	}

	root := sqrt
	if swapped {
		inv, ok := sqrt.Inverse()
		if !ok {
			return TokenPrice{}, model.NewValidationError("sqrtRatio", sqrt.String(), "must be positive")
		}
		root = inv
	}
	if root.Cmp(tickmath.MinSqrtRatio) < 0 || root.Cmp(tickmath.MaxSqrtRatio) >= 0 {
		return TokenPrice{}, model.NewValidationError("sqrtRatio", sqrt.String(), "outside [MIN_SQRT_RATIO, MAX_SQRT_RATIO)")
	}
	return TokenPrice{token0: token0, token1: token1, value: SqrtUnits{r: root}}, nil
}

// FromSqrtQ64x96 decodes a pool's sqrtPriceX96. a and b may come in either
// order; the value is taken as quoting b per a.
func FromSqrtQ64x96(a, b Token, sqrtPriceX96 *big.Int) (TokenPrice, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return TokenPrice{}, model.NewValidationError("sqrtPriceX96", fmt.Sprint(sqrtPriceX96), "must be positive")
	}
	if sqrtPriceX96.Cmp(maxUint160) > 0 {
		return TokenPrice{}, model.NewValidationError("sqrtPriceX96", sqrtPriceX96.String(), "exceeds uint160")
	}
	sqrt, err := ratio.FromFraction(sqrtPriceX96, tickmath.Q96)
	if err != nil {
		return TokenPrice{}, err
	}
	return FromSqrt(a, b, sqrt)
}

// FromTick builds the price at tick t, quoting b per a. Every valid tick is
// accepted, MaxTick included, although its root sits on the exclusive upper
// bound FromSqrt enforces: a tick is already range-checked and the bound only
// guards roots read from pool state.
func FromTick(a, b Token, t tickmath.Tick) (TokenPrice, error) {
	token0, token1, swapped, err := order(a, b)
	if err != nil {
		return TokenPrice{}, err
	}
	var value Value = SqrtUnits{r: tickmath.GetSqrtRatio(t)}
	if swapped {
		value = value.Flip()
	}
	return TokenPrice{token0: token0, token1: token1, value: value}, nil
}

func (p TokenPrice) Token0() Token { return p.token0 }

func (p TokenPrice) Token1() Token { return p.token1 }

func (p TokenPrice) Value() Value { return p.value }

// human is the unrounded token1-per-token0 price in whole tokens.
func (p TokenPrice) human() ratio.Ratio {
	return p.value.Ratio().Shift(int32(p.token0.Decimals) - int32(p.token1.Decimals))
}

// AsUnits renders the token1-per-token0 price floored to token1's decimals.
func (p TokenPrice) AsUnits() ratio.Ratio {
	return p.human().Floor(int32(p.token1.Decimals))
}

// AsFlippedUnits renders the token0-per-token1 price floored to token0's
// decimals.
func (p TokenPrice) AsFlippedUnits() ratio.Ratio {
	flipped := p.value.Flip().Ratio().Shift(int32(p.token1.Decimals) - int32(p.token0.Decimals))
	return flipped.Floor(int32(p.token0.Decimals))
}

// Quote is the unrounded human price of base in the other token.
func (p TokenPrice) Quote(base Token) (ratio.Ratio, bool) {
	switch {
	case base.Same(p.token0):
		return p.human(), true
	case base.Same(p.token1):
		return p.human().Inverse()
	default:
		return ratio.Zero, false
	}
}

// AsSqrt is the square root of the raw ratio whatever the representation.
func (p TokenPrice) AsSqrt() ratio.Ratio {
	return p.value.Sqrt()
}

// AsSqrtQ64x96 encodes the root as the pool's uint160 sqrtPriceX96,
// truncating. ok is false when the result does not fit in 160 bits.
func (p TokenPrice) AsSqrtQ64x96() (*big.Int, bool) {
	return EncodeQ64x96(p.AsSqrt())
}

// EncodeQ64x96 multiplies sqrt by 2^96 and truncates. Digits below the
// precision of sqrt are rounded off first, so a value decoded from
// sqrtPriceX96 encodes back to the same integer.
func EncodeQ64x96(sqrt ratio.Ratio) (*big.Int, bool) {
	scaled := sqrt.Decimal().Mul(q96Dec).Round(q96Resolution).BigInt()
	if scaled.Cmp(maxUint160) > 0 {
		return nil, false
	}
	return scaled, true
}

// Tick is the greatest tick at or below the price.
func (p TokenPrice) Tick() tickmath.Tick {
	return tickmath.GetTickAtRatio(p.value.Ratio())
}

// Contains reports whether t is one side of the pair.
func (p TokenPrice) Contains(t Token) bool {
	return t.Same(p.token0) || t.Same(p.token1)
}

// ProjectedToken returns the other side of the pair.
func (p TokenPrice) ProjectedToken(t Token) (Token, bool) {
	switch {
	case t.Same(p.token0):
		return p.token1, true
	case t.Same(p.token1):
		return p.token0, true
	default:
		return Token{}, false
	}
}

// ProjectAmount converts an amount of one side into the other at this
// price. ok is false when the token is not part of the pair.
func (p TokenPrice) ProjectAmount(in Volume) (Volume, bool) {
	switch {
	case in.Token.Same(p.token0):
		return Volume{Token: p.token1, Amount: in.Amount.Mul(p.human())}, true
	case in.Token.Same(p.token1):
		out, ok := in.Amount.Quo(p.human())
		if !ok {
			return Volume{}, false
		}
		return Volume{Token: p.token0, Amount: out}, true
	default:
		return Volume{}, false
	}
}

func (p TokenPrice) String() string {
	return fmt.Sprintf("%s %s/%s", p.AsUnits().String(), p.token1, p.token0)
}
