package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/l96lab/internal/dynamo"
)

type decaySystem struct{}

func (d *decaySystem) Dim() int { return 1 }
func (d *decaySystem) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

type eulerStepper struct{}

func (e *eulerStepper) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := sys.Derive(x, t)
	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = x[i] + dt*dx[i]
	}
	return out
}

func TestRunnerSampleCount(t *testing.T) {
	r := New(&decaySystem{}, &eulerStepper{})

	cfg := dynamo.Config{Dt: 0.01, Duration: 1.0, SampleEvery: 0.1}
	tr, err := r.Run(context.Background(), dynamo.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if tr.Len() != 10 {
		t.Errorf("expected 10 samples, got %d", tr.Len())
	}
	if tr.Valid != 10 {
		t.Errorf("expected all samples valid, got %d", tr.Valid)
	}
	if math.Abs(tr.LastTime-1.0) > 1e-12 {
		t.Errorf("expected last sample at t=1, got %f", tr.LastTime)
	}
	if tr.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", tr.StepsTaken)
	}

	final := tr.X[tr.Valid-1][0]
	expected := math.Exp(-1.0)
	if math.Abs(final-expected) > 0.05 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, final)
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	r := New(&decaySystem{}, &eulerStepper{})

	tests := []struct {
		name string
		cfg  dynamo.Config
		want error
	}{
		{"zero dt", dynamo.Config{Dt: 0, Duration: 1, SampleEvery: 0.1}, dynamo.ErrInvalidConfig},
		{"negative dt", dynamo.Config{Dt: -0.1, Duration: 1, SampleEvery: 0.1}, dynamo.ErrInvalidConfig},
		{"zero duration", dynamo.Config{Dt: 0.1, Duration: 0, SampleEvery: 0.1}, dynamo.ErrInvalidConfig},
		{"zero sample interval", dynamo.Config{Dt: 0.1, Duration: 1, SampleEvery: 0}, dynamo.ErrSampleInterval},
		{"incommensurate sample interval", dynamo.Config{Dt: 0.1, Duration: 1, SampleEvery: 0.15}, dynamo.ErrSampleInterval},
		{"sample interval below dt", dynamo.Config{Dt: 0.1, Duration: 1, SampleEvery: 0.01}, dynamo.ErrSampleInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), dynamo.State{1.0}, tt.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunnerDimensionMismatch(t *testing.T) {
	r := New(&decaySystem{}, &eulerStepper{})
	cfg := dynamo.Config{Dt: 0.01, Duration: 1, SampleEvery: 0.1}

	_, err := r.Run(context.Background(), dynamo.State{1.0, 2.0}, cfg)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}

func TestRunnerDivergenceTruncates(t *testing.T) {
	r := New(&decaySystem{}, &eulerStepper{})
	cfg := dynamo.Config{Dt: 0.01, Duration: 1.0, SampleEvery: 0.1, Threshold: 1000.0}

	tr, err := r.Run(context.Background(), dynamo.State{1e6}, cfg)
	if err != nil {
		t.Fatalf("divergence must not be an error, got %v", err)
	}

	if !tr.Diverged {
		t.Error("expected Diverged flag")
	}
	if tr.Valid >= tr.Len() {
		t.Errorf("expected truncated trajectory, valid=%d len=%d", tr.Valid, tr.Len())
	}
	for i := 0; i < tr.Valid; i++ {
		if tr.X[i].MaxAbs() > 1000.0 {
			t.Errorf("valid prefix exceeds threshold at sample %d", i)
		}
	}
	for i := tr.Valid; i < tr.Len(); i++ {
		if !math.IsNaN(tr.Times[i]) || !math.IsNaN(tr.X[i][0]) {
			t.Errorf("expected NaN sentinel at sample %d", i)
		}
	}
}

func TestRunnerDeterminism(t *testing.T) {
	cfg := dynamo.Config{Dt: 0.01, Duration: 2.0, SampleEvery: 0.1}
	x0 := dynamo.State{1.0}

	run := func() *dynamo.Trajectory {
		r := New(&decaySystem{}, &eulerStepper{})
		tr, err := r.Run(context.Background(), x0, cfg)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return tr
	}

	a, b := run(), run()
	for i := 0; i < a.Valid; i++ {
		if a.X[i][0] != b.X[i][0] {
			t.Fatalf("trajectories differ at sample %d: %v vs %v", i, a.X[i][0], b.X[i][0])
		}
	}
}

func TestRunnerContextCancel(t *testing.T) {
	r := New(&decaySystem{}, &eulerStepper{})
	cfg := dynamo.Config{Dt: 0.001, Duration: 100.0, SampleEvery: 0.01}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := r.Run(ctx, dynamo.State{1.0}, cfg)
	if err == nil {
		t.Fatal("expected context error")
	}
	if tr == nil {
		t.Fatal("expected partial trajectory on cancellation")
	}
}

type noisyMetric struct {
	count int
}

func (m *noisyMetric) Name() string                      { return "count" }
func (m *noisyMetric) Observe(x dynamo.State, t float64) { m.count++ }
func (m *noisyMetric) Value() float64                    { return float64(m.count) }
func (m *noisyMetric) Reset()                            { m.count = 0 }

func TestRunnerMetrics(t *testing.T) {
	r := New(&decaySystem{}, &eulerStepper{})
	m := &noisyMetric{}
	r.AddMetric(m)

	cfg := dynamo.Config{Dt: 0.01, Duration: 1.0, SampleEvery: 0.1}
	tr, err := r.Run(context.Background(), dynamo.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got, ok := tr.Metrics["count"]; !ok || got != 10 {
		t.Errorf("expected 10 metric observations, got %v", got)
	}
}

func TestEnsembleIndependentRuns(t *testing.T) {
	factory := func() *Runner { return New(&decaySystem{}, &eulerStepper{}) }
	e := NewEnsemble(factory, 4, 42, 0.1)

	cfg := dynamo.Config{Dt: 0.01, Duration: 1.0, SampleEvery: 0.1}
	results, err := e.Run(context.Background(), dynamo.State{1.0}, cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 members, got %d", len(results))
	}
	distinct := false
	for i := 1; i < len(results); i++ {
		if results[i].X[0][0] != results[0].X[0][0] {
			distinct = true
		}
	}
	if !distinct {
		t.Error("expected perturbed members to differ")
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	r := New(&decaySystem{}, &eulerStepper{})
	cfg := dynamo.Config{Dt: 0.01, Duration: 1.0, SampleEvery: 0.1}

	calls := 0
	err := r.RunWithCallback(context.Background(), dynamo.State{1.0}, cfg, func(x dynamo.State, tm float64) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected the callback to stop the run after 5 calls, got %d", calls)
	}
}
