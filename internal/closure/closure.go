// Package closure provides coupling-term sources for the reduced
// single-scale model: the truth model's explicit fast-variable sum is
// replaced by one of these parameterizations.
package closure

import "fmt"

// Coupling supplies the unresolved-tendency term added elementwise to
// each slow variable's derivative.
type Coupling interface {
	Name() string
	Terms(x []float64, t float64) []float64
}

// Zero is the uncoupled limit: the reduced model with no subgrid term.
type Zero struct{}

func (Zero) Name() string { return "zero" }

func (Zero) Terms(x []float64, _ float64) []float64 {
	return make([]float64, len(x))
}

// Constant applies the same offset to every slow variable, the crudest
// tuning knob for a missing subgrid tendency.
type Constant struct {
	value float64
}

func NewConstant(v float64) *Constant { return &Constant{value: v} }

func (c *Constant) Name() string   { return fmt.Sprintf("constant(%g)", c.value) }
func (c *Constant) Value() float64 { return c.value }

func (c *Constant) Terms(x []float64, _ float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = c.value
	}
	return out
}
