package analysis

import (
	"math"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run two nearby trajectories
// 2. Measure their divergence over time
// 3. λ ≈ (1/t) * ln(|δx(t)/δx(0)|)
func LyapunovExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation

	d0 := perturbation
	t := 0.0

	sumLog := 0.0
	count := 0

	for t < duration {
		x = integ.Step(sys, x, t, dt)
		xp = integ.Step(sys, xp, t, dt)
		t += dt

		sep := 0.0
		for i := range x {
			diff := xp[i] - x[i]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)

		if sep > 0 && d0 > 0 {
			sumLog += math.Log(sep / d0)
			count++
		}

		// Renormalize to prevent overflow
		if sep > 1.0 {
			scale := d0 / sep
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}
	}

	if count == 0 || t == 0 {
		return 0
	}

	return sumLog / (float64(count) * dt)
}
