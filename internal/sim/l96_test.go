package sim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/l96lab/internal/dynamo"
	"github.com/san-kum/l96lab/internal/integrators"
	"github.com/san-kum/l96lab/internal/model"
)

// The reference scenario: standard parameters, rk4 at dt=0.01, twenty
// time units sampled every step. The run must stay bounded and deliver
// exactly 2000 finite samples.
func TestReferenceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("long integration")
	}

	p := model.Params{K: 8, J: 32, F: 18, H: 1, B: 10, C: 10}
	sys := model.NewTwoScale(p)
	runner := New(sys, integrators.NewRK4())

	tr, err := runner.Run(context.Background(), sys.DefaultState(), dynamo.Config{
		Dt:          0.01,
		Duration:    20.0,
		SampleEvery: 0.01,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if tr.Len() != 2000 {
		t.Fatalf("expected 2000 samples, got %d", tr.Len())
	}
	if tr.Diverged {
		t.Fatalf("reference run diverged at t=%.3f", tr.LastTime)
	}
	if tr.Valid != 2000 {
		t.Fatalf("expected all samples valid, got %d", tr.Valid)
	}

	for i, x := range tr.X {
		if !x.IsValid() {
			t.Fatalf("sample %d is not finite", i)
		}
	}

	// The attractor keeps slow variables an order of magnitude below
	// the divergence threshold.
	for i, x := range tr.X {
		if x.MaxAbs() > 100 {
			t.Fatalf("sample %d out of physical range: %v", i, x.MaxAbs())
		}
	}

	if math.Abs(tr.Times[0]-0.01) > 1e-12 || math.Abs(tr.LastTime-20.0) > 1e-9 {
		t.Errorf("sample times off grid: first=%v last=%v", tr.Times[0], tr.LastTime)
	}
}

// A free-running reduced model with zero closure must also complete
// the reference duration without the guard tripping.
func TestReferenceScenarioReduced(t *testing.T) {
	if testing.Short() {
		t.Skip("long integration")
	}

	p := model.Params{K: 8, J: 32, F: 18, H: 1, B: 10, C: 10}
	sys := model.NewSingleScale(p, nil)
	runner := New(sys, integrators.NewEuler())

	tr, err := runner.Run(context.Background(), sys.DefaultState(), dynamo.Config{
		Dt:          0.01,
		Duration:    20.0,
		SampleEvery: 0.01,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if tr.Diverged || tr.Valid != 2000 {
		t.Fatalf("expected 2000 valid samples, got %d (diverged=%v)", tr.Valid, tr.Diverged)
	}
}
