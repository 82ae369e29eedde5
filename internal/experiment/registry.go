package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/l96lab/internal/closure"
	"github.com/san-kum/l96lab/internal/config"
	"github.com/san-kum/l96lab/internal/dynamo"
	"github.com/san-kum/l96lab/internal/integrators"
	"github.com/san-kum/l96lab/internal/metrics"
	"github.com/san-kum/l96lab/internal/model"
)

// Registry resolves model, integrator and closure names from the CLI
// and config files into constructed values.
type Registry struct {
	integrators map[string]func() dynamo.Integrator
	closures    map[string]func(cc config.ClosureConfig, rng *rand.Rand) closure.Coupling
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		closures:    make(map[string]func(config.ClosureConfig, *rand.Rand) closure.Coupling),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	r.closures["zero"] = func(config.ClosureConfig, *rand.Rand) closure.Coupling {
		return closure.Zero{}
	}
	r.closures["constant"] = func(cc config.ClosureConfig, _ *rand.Rand) closure.Coupling {
		return closure.NewConstant(cc.Constant)
	}
	r.closures["poly"] = func(cc config.ClosureConfig, _ *rand.Rand) closure.Coupling {
		return closure.NewPolynomial(cc.Coeffs)
	}
	r.closures["stochastic"] = func(cc config.ClosureConfig, rng *rand.Rand) closure.Coupling {
		var base closure.Coupling = closure.Zero{}
		if len(cc.Coeffs) > 0 {
			base = closure.NewPolynomial(cc.Coeffs)
		}
		return closure.NewStochastic(base, cc.Phi, cc.Sigma, rng)
	}

	return r
}

func (r *Registry) GetModel(name string, p model.Params, cl closure.Coupling) (dynamo.System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch name {
	case "twoscale":
		return model.NewTwoScale(p), nil
	case "gcm":
		return model.NewSingleScale(p, cl), nil
	default:
		return nil, fmt.Errorf("unknown model: %s", name)
	}
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetClosure(name string, cc config.ClosureConfig, rng *rand.Rand) (closure.Coupling, error) {
	fn, ok := r.closures[name]
	if !ok {
		return nil, fmt.Errorf("unknown closure: %s", name)
	}
	return fn(cc, rng), nil
}

func (r *Registry) ListModels() []string {
	return []string{"gcm", "twoscale"}
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListClosures() []string {
	names := make([]string, 0, len(r.closures))
	for name := range r.closures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics wires the standard per-run diagnostics for a system.
func (r *Registry) DefaultMetrics(sys dynamo.System, threshold float64) []dynamo.Metric {
	if threshold <= 0 {
		threshold = dynamo.DivergenceThreshold
	}

	slow := sys.Dim()
	if p, ok := sys.(dynamo.Partitioned); ok {
		slow = p.SlowDim()
	}

	ms := []dynamo.Metric{
		metrics.NewEnergy(slow),
		metrics.NewStability(threshold),
	}
	if ts, ok := sys.(*model.TwoScale); ok {
		ms = append(ms, metrics.NewCouplingMagnitude(ts))
	}
	return ms
}
