package model

import (
	"math/rand"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// TwoScale is the full two-timescale Lorenz-96 "truth" model.
// State layout: [X_0 .. X_{K-1}, Y_{0,0} .. Y_{J-1,0}, .., Y_{J-1,K-1}],
// i.e. the K slow variables followed by one J-sized fast block per slow
// index. Slow neighbors wrap modulo K; fast neighbors wrap modulo J
// within their block.
type TwoScale struct {
	p Params
}

func NewTwoScale(p Params) *TwoScale { return &TwoScale{p: p} }

func (m *TwoScale) Dim() int       { return m.p.K + m.p.J*m.p.K }
func (m *TwoScale) SlowDim() int   { return m.p.K }
func (m *TwoScale) Params() Params { return m.p }

// Derive evaluates both tendencies:
//
//	dX_k/dt = -X_{k-1}(X_{k-2} - X_{k+1}) - X_k + F + C_k
//	dY_{j,k}/dt = -c b Y_{j+1,k}(Y_{j+2,k} - Y_{j-1,k}) - c Y_{j,k} + (hc/b) X_k
//
// where C_k = -(hc/b) sum_j Y_{j,k}.
func (m *TwoScale) Derive(s dynamo.State, _ float64) dynamo.State {
	k, j := m.p.K, m.p.J
	g := m.p.Gamma()
	cb := m.p.C * m.p.B

	d := make(dynamo.State, len(s))
	x := s[:k]

	for i := 0; i < k; i++ {
		block := s[k+i*j : k+(i+1)*j]
		sum := 0.0
		for jj := 0; jj < j; jj++ {
			sum += block[jj]
		}
		d[i] = advection(x, i, k, 1) - x[i] + m.p.F - g*sum

		for jj := 0; jj < j; jj++ {
			d[k+i*j+jj] = cb*advection(block, jj, j, -1) - m.p.C*block[jj] + g*x[i]
		}
	}

	return d
}

// CouplingTerms returns the fast-to-slow coupling C_k = -(hc/b) sum_j
// Y_{j,k} exactly as it enters dX_k/dt. This is the diagnostic the
// polynomial closures are fitted against.
func (m *TwoScale) CouplingTerms(s dynamo.State) []float64 {
	k, j := m.p.K, m.p.J
	g := m.p.Gamma()

	terms := make([]float64, k)
	for i := 0; i < k; i++ {
		sum := 0.0
		for jj := 0; jj < j; jj++ {
			sum += s[k+i*j+jj]
		}
		terms[i] = -g * sum
	}
	return terms
}

// Split views the state as its slow and fast parts.
func (m *TwoScale) Split(s dynamo.State) (x, y dynamo.State) {
	return s[:m.p.K], s[m.p.K:]
}

// Energy is the slow-variable energy proxy sum(X^2)/2, conserved by
// the advection term alone.
func (m *TwoScale) Energy(s dynamo.State) float64 {
	e := 0.0
	for i := 0; i < m.p.K; i++ {
		e += 0.5 * s[i] * s[i]
	}
	return e
}

// DefaultState is the rest state X = F with a small kick on X_0, the
// classic trigger onto the attractor after spin-up.
func (m *TwoScale) DefaultState() dynamo.State {
	s := make(dynamo.State, m.Dim())
	for i := 0; i < m.p.K; i++ {
		s[i] = m.p.F
	}
	s[0] += 0.01
	for i := m.p.K; i < len(s); i++ {
		s[i] = 0.01
	}
	return s
}

// RandomState draws an initial condition from the caller-owned rng:
// slow variables scattered around the forcing, fast variables at
// subgrid amplitude.
func (m *TwoScale) RandomState(rng *rand.Rand) dynamo.State {
	s := make(dynamo.State, m.Dim())
	for i := 0; i < m.p.K; i++ {
		s[i] = m.p.F * (rng.Float64() - 0.5)
	}
	for i := m.p.K; i < len(s); i++ {
		s[i] = 0.1 * (rng.Float64() - 0.5)
	}
	return s
}

func (m *TwoScale) GetParams() map[string]float64 {
	return map[string]float64{"f": m.p.F, "h": m.p.H, "b": m.p.B, "c": m.p.C}
}

func (m *TwoScale) SetParam(name string, value float64) error {
	switch name {
	case "f":
		m.p.F = value
	case "h":
		m.p.H = value
	case "b":
		if value == 0 {
			return dynamo.ErrParameterBounds
		}
		m.p.B = value
	case "c":
		m.p.C = value
	default:
		return dynamo.ErrParameterBounds
	}
	return nil
}
