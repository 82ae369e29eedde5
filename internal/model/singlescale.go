package model

import (
	"math/rand"

	"github.com/san-kum/l96lab/internal/closure"
	"github.com/san-kum/l96lab/internal/dynamo"
)

// SingleScale is the reduced one-timescale model (the "GCM"): K slow
// variables only, with the explicit fast-variable sum replaced by an
// injected closure. It reuses the same advection stencil as TwoScale.
type SingleScale struct {
	p  Params
	cl closure.Coupling
}

func NewSingleScale(p Params, cl closure.Coupling) *SingleScale {
	if cl == nil {
		cl = closure.Zero{}
	}
	return &SingleScale{p: p, cl: cl}
}

func (m *SingleScale) Dim() int                  { return m.p.K }
func (m *SingleScale) SlowDim() int              { return m.p.K }
func (m *SingleScale) Params() Params            { return m.p }
func (m *SingleScale) Closure() closure.Coupling { return m.cl }

// Derive evaluates dX_k/dt = -X_{k-1}(X_{k-2} - X_{k+1}) - X_k + F + C_k,
// with C_k supplied by the closure.
func (m *SingleScale) Derive(s dynamo.State, t float64) dynamo.State {
	k := m.p.K
	d := make(dynamo.State, k)
	c := m.cl.Terms(s[:k], t)
	for i := 0; i < k; i++ {
		d[i] = advection(s, i, k, 1) - s[i] + m.p.F + c[i]
	}
	return d
}

func (m *SingleScale) Energy(s dynamo.State) float64 {
	e := 0.0
	for i := 0; i < m.p.K && i < len(s); i++ {
		e += 0.5 * s[i] * s[i]
	}
	return e
}

func (m *SingleScale) DefaultState() dynamo.State {
	s := make(dynamo.State, m.p.K)
	for i := range s {
		s[i] = m.p.F
	}
	s[0] += 0.01
	return s
}

func (m *SingleScale) RandomState(rng *rand.Rand) dynamo.State {
	s := make(dynamo.State, m.p.K)
	for i := range s {
		s[i] = m.p.F * (rng.Float64() - 0.5)
	}
	return s
}

func (m *SingleScale) GetParams() map[string]float64 {
	return map[string]float64{"f": m.p.F}
}

func (m *SingleScale) SetParam(name string, value float64) error {
	if name != "f" {
		return dynamo.ErrParameterBounds
	}
	m.p.F = value
	return nil
}
