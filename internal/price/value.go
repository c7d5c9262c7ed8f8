package price

import (
	"rangePlanner/internal/ratio"
)

// Value is a raw token1-per-token0 price held either linearly (Units) or as
// its square root (SqrtUnits). The set of implementations is closed.
type Value interface {
	// Ratio is the linear ratio.
	Ratio() ratio.Ratio
	// Sqrt is the square root of the linear ratio.
	Sqrt() ratio.Ratio
	// Flip returns the reciprocal in the same representation. Zero has no
	// reciprocal and flips to zero; only the zero struct value can hold it,
	// since the TokenPrice constructors reject zero.
	Flip() Value

	sealed()
}

// Units stores the linear ratio, the shape user input arrives in.
type Units struct {
	r ratio.Ratio
}

// SqrtUnits stores the square root, the shape pool state arrives in.
type SqrtUnits struct {
	r ratio.Ratio
}

func (Units) sealed()     {}
func (SqrtUnits) sealed() {}

func (u Units) Ratio() ratio.Ratio { return u.r }

func (u Units) Sqrt() ratio.Ratio { return u.r.Sqrt() }

func (u Units) Flip() Value {
	inv, _ := u.r.Inverse()
	return Units{r: inv}
}

func (s SqrtUnits) Ratio() ratio.Ratio { return s.r.Square() }

func (s SqrtUnits) Sqrt() ratio.Ratio { return s.r }

// Flip takes the reciprocal of the root directly, without squaring.
func (s SqrtUnits) Flip() Value {
	inv, _ := s.r.Inverse()
	return SqrtUnits{r: inv}
}
