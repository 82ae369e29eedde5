package closure

import (
	"fmt"
	"math"
	"math/rand"
)

// Stochastic wraps a deterministic base closure with an AR(1) red-noise
// residual per slow index:
//
//	e_k <- phi*e_k + sigma*sqrt(1-phi^2)*N(0,1)
//
// The rng is caller-owned, so two runs built from the same seed produce
// identical noise. Unlike the other closures, Terms carries state
// between calls; use one Stochastic value per run.
type Stochastic struct {
	base  Coupling
	phi   float64
	sigma float64
	rng   *rand.Rand
	e     []float64
}

func NewStochastic(base Coupling, phi, sigma float64, rng *rand.Rand) *Stochastic {
	if base == nil {
		base = Zero{}
	}
	return &Stochastic{base: base, phi: phi, sigma: sigma, rng: rng}
}

func (s *Stochastic) Name() string {
	return fmt.Sprintf("stochastic(%s, phi=%g, sigma=%g)", s.base.Name(), s.phi, s.sigma)
}

func (s *Stochastic) Terms(x []float64, t float64) []float64 {
	if len(s.e) != len(x) {
		s.e = make([]float64, len(x))
	}
	out := s.base.Terms(x, t)
	amp := s.sigma * math.Sqrt(1-s.phi*s.phi)
	for i := range out {
		s.e[i] = s.phi*s.e[i] + amp*s.rng.NormFloat64()
		out[i] += s.e[i]
	}
	return out
}
