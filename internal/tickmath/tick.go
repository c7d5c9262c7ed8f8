package tickmath

import (
	"errors"
	"fmt"
)

const (
	MinTick = -887272
	MaxTick = -MinTick
)

var (
	ErrTickOutOfRange     = errors.New("tick out of range")
	ErrUnknownFeeTier     = errors.New("unknown fee tier")
	ErrInvalidTickSpacing = errors.New("invalid tick spacing")
)

// Tick is an index in [MinTick, MaxTick]; price = 1.0001^tick.
type Tick struct {
	v int32
}

// NewTick validates the bounds.
func NewTick(v int) (Tick, error) {
	if v < MinTick || v > MaxTick {
		return Tick{}, fmt.Errorf("%w: %d", ErrTickOutOfRange, v)
	}
	return Tick{v: int32(v)}, nil
}

func MustTick(v int) Tick {
	t, err := NewTick(v)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Tick) Int() int { return int(t.v) }

func (t Tick) Int32() int32 { return t.v }

func (t Tick) String() string { return fmt.Sprintf("%d", t.v) }

// FeeTier is a pool fee in hundredths of a bip.
type FeeTier uint32

const (
	FeeLowest FeeTier = 100
	FeeLow    FeeTier = 500
	FeeMedium FeeTier = 3000
	FeeHigh   FeeTier = 10000
)

// ParseFeeTier validates a fee read from a pool contract or user input.
func ParseFeeTier(fee uint32) (FeeTier, error) {
	switch f := FeeTier(fee); f {
	case FeeLowest, FeeLow, FeeMedium, FeeHigh:
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownFeeTier, fee)
	}
}

// TickSpacing is the spacing the factory assigns to f. FeeTier values come
// from the constants above or ParseFeeTier; anything else panics.
func (f FeeTier) TickSpacing() TickSpacing {
	switch f {
	case FeeLowest:
		return TickSpacing{v: 1}
	case FeeLow:
		return TickSpacing{v: 10}
	case FeeMedium:
		return TickSpacing{v: 60}
	case FeeHigh:
		return TickSpacing{v: 200}
	}
	panic(fmt.Sprintf("tickmath: fee tier %d is not in the spacing table", uint32(f)))
}

// TickSpacing is one of the spacings of the fee tier table.
type TickSpacing struct {
	v int32
}

// NewTickSpacing accepts 1, 10, 60 or 200.
func NewTickSpacing(v int32) (TickSpacing, error) {
	switch v {
	case 1, 10, 60, 200:
		return TickSpacing{v: v}, nil
	default:
		return TickSpacing{}, fmt.Errorf("%w: %d", ErrInvalidTickSpacing, v)
	}
}

func (s TickSpacing) Int() int { return int(s.v) }

func (s TickSpacing) Int32() int32 { return s.v }

// UsableTick is a Tick divisible by the spacing that produced it.
type UsableTick struct {
	tick    Tick
	spacing TickSpacing
}

func (u UsableTick) Tick() Tick { return u.tick }

func (u UsableTick) Spacing() TickSpacing { return u.spacing }

func (u UsableTick) Int() int { return u.tick.Int() }

// Next steps one spacing up.
func (u UsableTick) Next() (UsableTick, bool) { return AddNTicks(u, 1) }

// Prev steps one spacing down.
func (u UsableTick) Prev() (UsableTick, bool) { return SubtractNTicks(u, 1) }

// NewUsableTick accepts t only when it is already a multiple of spacing.
func NewUsableTick(t Tick, spacing TickSpacing) (UsableTick, error) {
	if spacing.v <= 0 {
		return UsableTick{}, ErrInvalidTickSpacing
	}
	if t.v%spacing.v != 0 {
		return UsableTick{}, fmt.Errorf("tick %d is not a multiple of spacing %d", t.v, spacing.v)
	}
	return UsableTick{tick: t, spacing: spacing}, nil
}

// NearestUsableTick rounds t to the closest multiple of spacing, ties away
// from zero as the Go uniswapv3-sdk port does (the TypeScript SDK's
// Math.round sends -5 at spacing 10 to 0, not -10), then pulls the result
// back inside [MinTick, MaxTick].
func NearestUsableTick(t Tick, spacing TickSpacing) UsableTick {
	s := int(spacing.v)
	v := t.Int()

	q := v / s
	rem := v % s
	if rem < 0 {
		rem = -rem
	}
	if 2*rem >= s && rem != 0 {
		if v < 0 {
			q--
		} else {
			q++
		}
	}
	rounded := q * s
	if rounded < MinTick {
		rounded += s
	} else if rounded > MaxTick {
		rounded -= s
	}
	return UsableTick{tick: Tick{v: int32(rounded)}, spacing: spacing}
}

// MinUsableTick is the lowest multiple of spacing inside the tick range.
func MinUsableTick(spacing TickSpacing) UsableTick {
	return NearestUsableTick(Tick{v: MinTick}, spacing)
}

// MaxUsableTick is the highest multiple of spacing inside the tick range.
func MaxUsableTick(spacing TickSpacing) UsableTick {
	return NearestUsableTick(Tick{v: MaxTick}, spacing)
}

// AddNTicks moves n spacings up. ok is false when the result leaves the
// tick range.
func AddNTicks(u UsableTick, n int) (UsableTick, bool) {
	if !withinSpan(u.spacing, n) {
		return UsableTick{}, false
	}
	next := u.Int() + n*int(u.spacing.v)
	if next < MinTick || next > MaxTick {
		return UsableTick{}, false
	}
	return UsableTick{tick: Tick{v: int32(next)}, spacing: u.spacing}, true
}

// SubtractNTicks moves n spacings down.
func SubtractNTicks(u UsableTick, n int) (UsableTick, bool) {
	if !withinSpan(u.spacing, n) {
		return UsableTick{}, false
	}
	return AddNTicks(u, -n)
}

// withinSpan bounds |n| by the number of spacings in the whole tick range,
// so n*spacing cannot overflow.
func withinSpan(spacing TickSpacing, n int) bool {
	limit := (MaxTick - MinTick) / int(spacing.v)
	return n >= -limit && n <= limit
}

// Subtract returns the signed distance, in spacings, between the nearest
// usable ticks of a and b.
func Subtract(a, b Tick, spacing TickSpacing) int {
	ua := NearestUsableTick(a, spacing)
	ub := NearestUsableTick(b, spacing)
	return (ua.Int() - ub.Int()) / int(spacing.v)
}
