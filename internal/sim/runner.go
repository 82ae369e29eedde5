package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// Runner advances a system by fixed steps and records a sampled
// trajectory. It is a pure function of (x0, cfg) aside from the
// registered metrics and observers; a Runner holds no state between
// runs but is not safe for concurrent use (the integrator may carry
// scratch buffers).
type Runner struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Runner {
	return &Runner{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

// Run integrates from x0 until cfg.Duration, recording a snapshot every
// cfg.SampleEvery. If the slow variables exceed cfg.Threshold the run
// stops early and the trajectory keeps its NaN sentinels past Valid;
// that truncation is a policy, not an error, and Run returns nil.
func (r *Runner) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Trajectory, error) {
	if err := r.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != r.sys.Dim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d",
			dynamo.ErrDimensionMismatch, len(x0), r.sys.Dim())
	}

	stride := int(math.Round(cfg.SampleEvery / cfg.Dt))
	samples := int(cfg.Duration/cfg.SampleEvery + 1e-9)

	slow := r.sys.Dim()
	if p, ok := r.sys.(dynamo.Partitioned); ok {
		slow = p.SlowDim()
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = dynamo.DivergenceThreshold
	}

	tr := &dynamo.Trajectory{
		Times:   make([]float64, samples),
		X:       make([]dynamo.State, samples),
		Metrics: make(map[string]float64),
	}
	if cfg.RecordFast && slow < r.sys.Dim() {
		tr.Y = make([]dynamo.State, samples)
	}
	for i := 0; i < samples; i++ {
		tr.Times[i] = math.NaN()
		tr.X[i] = nanState(slow)
		if tr.Y != nil {
			tr.Y[i] = nanState(r.sys.Dim() - slow)
		}
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

sampling:
	for i := 0; i < samples; i++ {
		for s := 0; s < stride; s++ {
			select {
			case <-ctx.Done():
				return tr, ctx.Err()
			default:
			}

			x = r.integrator.Step(r.sys, x, t, cfg.Dt)
			t += cfg.Dt
			tr.StepsTaken++

			if x[:slow].MaxAbs() > threshold {
				tr.Diverged = true
				break sampling
			}
		}

		// Snap to the exact sample grid so recorded times stay free of
		// accumulated dt rounding.
		ts := float64(i+1) * cfg.SampleEvery
		tr.Times[i] = ts
		tr.X[i] = x[:slow].Clone()
		if tr.Y != nil {
			tr.Y[i] = x[slow:].Clone()
		}
		tr.Valid = i + 1
		tr.LastTime = ts

		for _, m := range r.metrics {
			m.Observe(x, ts)
		}
		for _, o := range r.observers {
			o.OnStep(x, ts)
		}
	}

	for _, m := range r.metrics {
		tr.Metrics[m.Name()] = m.Value()
	}

	return tr, nil
}

func (r *Runner) validateConfig(cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample interval must be positive, got %g", dynamo.ErrSampleInterval, cfg.SampleEvery)
	}
	ratio := cfg.SampleEvery / cfg.Dt
	if ratio < 0.5 || math.Abs(ratio-math.Round(ratio)) > 1e-6 {
		return fmt.Errorf("%w: %g / %g = %g", dynamo.ErrSampleInterval, cfg.SampleEvery, cfg.Dt, ratio)
	}
	return nil
}

// RunWithCallback steps the system without recording, invoking the
// callback once per step; returning false stops the run. Used by the
// live view.
func (r *Runner) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(dynamo.State, float64) bool) error {
	if err := r.validateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0

	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, t) {
			return nil
		}

		x = r.integrator.Step(r.sys, x, t, cfg.Dt)
		t += cfg.Dt

		if !x.IsValid() {
			return fmt.Errorf("%w at t=%.4f", dynamo.ErrInvalidState, t)
		}
	}

	return nil
}

func nanState(n int) dynamo.State {
	s := make(dynamo.State, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
