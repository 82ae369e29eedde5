package analysis

import (
	"math"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// SweepPoint records post-transient attractor statistics of one slow
// variable for a single forcing value.
type SweepPoint struct {
	Param float64
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// ForcingSweep varies a named parameter (usually the forcing "f") and
// records the statistics of one state component after a transient,
// tracing the transition from steady to chaotic regimes.
func ForcingSweep(
	sys dynamo.System,
	integ dynamo.Integrator,
	paramName string,
	paramMin, paramMax float64,
	paramSteps int,
	stateIndex int,
	x0 dynamo.State,
	dt, transient, record float64,
) []SweepPoint {
	tunable, ok := sys.(dynamo.Configurable)
	if !ok {
		return nil
	}
	if paramSteps <= 1 {
		paramSteps = 2
	}
	paramStep := (paramMax - paramMin) / float64(paramSteps-1)

	results := make([]SweepPoint, 0, paramSteps)

	for i := 0; i < paramSteps; i++ {
		param := paramMin + float64(i)*paramStep
		if err := tunable.SetParam(paramName, param); err != nil {
			return results
		}

		x := x0.Clone()
		t := 0.0

		for t < transient {
			x = integ.Step(sys, x, t, dt)
			t += dt
		}

		var sum, sumSq float64
		minV, maxV := math.Inf(1), math.Inf(-1)
		n := 0

		for t < transient+record {
			x = integ.Step(sys, x, t, dt)
			t += dt

			if stateIndex >= len(x) {
				continue
			}
			v := x[stateIndex]
			sum += v
			sumSq += v * v
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
			n++
		}

		pt := SweepPoint{Param: param, Min: minV, Max: maxV}
		if n > 0 {
			pt.Mean = sum / float64(n)
			pt.Std = math.Sqrt(math.Max(0, sumSq/float64(n)-pt.Mean*pt.Mean))
		}
		results = append(results, pt)
	}

	return results
}
