package model

import (
	"fmt"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// Params is the immutable scalar configuration of a Lorenz-96 run.
// K slow variables on a ring, J fast variables nested under each slow
// index. F is the forcing, h the coupling strength, b the fast
// amplitude ratio, c the fast/slow timescale ratio.
type Params struct {
	K int     `yaml:"k" json:"k"`
	J int     `yaml:"j" json:"j"`
	F float64 `yaml:"f" json:"f"`
	H float64 `yaml:"h" json:"h"`
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`
}

// DefaultParams are the reference values from the literature.
func DefaultParams() Params {
	return Params{K: 8, J: 32, F: 18.0, H: 1.0, B: 10.0, C: 10.0}
}

func (p Params) Validate() error {
	if p.K < 4 {
		return fmt.Errorf("%w: K must be >= 4, got %d", dynamo.ErrParameterBounds, p.K)
	}
	if p.J < 1 {
		return fmt.Errorf("%w: J must be >= 1, got %d", dynamo.ErrParameterBounds, p.J)
	}
	if p.B == 0 {
		return fmt.Errorf("%w: b must be nonzero", dynamo.ErrParameterBounds)
	}
	return nil
}

// Gamma is the cross-scale coupling coefficient h*c/b.
func (p Params) Gamma() float64 {
	return p.H * p.C / p.B
}
