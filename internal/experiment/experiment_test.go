package experiment

import (
	"context"
	"math/rand"
	"testing"

	"github.com/san-kum/l96lab/internal/config"
	"github.com/san-kum/l96lab/internal/model"
)

func TestRegistryResolvesNames(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.ListIntegrators() {
		if _, err := r.GetIntegrator(name); err != nil {
			t.Errorf("GetIntegrator(%s) failed: %v", name, err)
		}
	}
	for _, name := range r.ListClosures() {
		if _, err := r.GetClosure(name, config.ClosureConfig{}, rand.New(rand.NewSource(1))); err != nil {
			t.Errorf("GetClosure(%s) failed: %v", name, err)
		}
	}

	if _, err := r.GetIntegrator("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if _, err := r.GetClosure("magic", config.ClosureConfig{}, nil); err == nil {
		t.Error("expected error for unknown closure")
	}
}

func TestRegistryGetModel(t *testing.T) {
	r := NewRegistry()
	p := model.Params{K: 4, J: 2, F: 10, H: 1, B: 10, C: 10}

	if _, err := r.GetModel("twoscale", p, nil); err != nil {
		t.Errorf("twoscale failed: %v", err)
	}
	if _, err := r.GetModel("gcm", p, nil); err != nil {
		t.Errorf("gcm failed: %v", err)
	}
	if _, err := r.GetModel("barotropic", p, nil); err == nil {
		t.Error("expected error for unknown model")
	}
	if _, err := r.GetModel("twoscale", model.Params{K: 2, J: 2, B: 10}, nil); err == nil {
		t.Error("expected validation error for K=2")
	}
}

func TestRegistryDefaultMetrics(t *testing.T) {
	r := NewRegistry()
	p := model.Params{K: 4, J: 2, F: 10, H: 1, B: 10, C: 10}

	truth := model.NewTwoScale(p)
	if got := len(r.DefaultMetrics(truth, 1000)); got != 3 {
		t.Errorf("expected 3 metrics for truth model, got %d", got)
	}

	gcm := model.NewSingleScale(p, nil)
	if got := len(r.DefaultMetrics(gcm, 1000)); got != 2 {
		t.Errorf("expected 2 metrics for gcm, got %d", got)
	}
}

func runOnce(t *testing.T, seed int64) []float64 {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Model = "twoscale"
	cfg.Params = model.Params{K: 4, J: 2, F: 10, H: 1, B: 10, C: 10}
	cfg.Dt = 0.005
	cfg.SampleEvery = 0.01
	cfg.Duration = 0.5
	cfg.Spinup = 0.1
	cfg.RandomInit = true
	cfg.Seed = seed

	r := NewRegistry()
	sys, err := r.GetModel(cfg.Model, cfg.Params, nil)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		t.Fatalf("integrator: %v", err)
	}

	exp := New(cfg)
	if err := exp.Setup(sys, integ, r.DefaultMetrics(sys, cfg.Threshold)); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tr, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if tr.Valid == 0 {
		t.Fatal("expected valid samples")
	}
	return tr.X[tr.Valid-1]
}

func TestExperimentDeterminism(t *testing.T) {
	a := runOnce(t, 42)
	b := runOnce(t, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed must reproduce the trajectory bit for bit")
		}
	}

	c := runOnce(t, 43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds should diverge")
	}
}

func TestExperimentNotSetup(t *testing.T) {
	exp := New(config.DefaultConfig())
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error before Setup")
	}
}
