// Package automation runs scripted sequences of simulations from YAML
// scenario files, for pipelines like reference run, closure fit and
// reduced-model evaluation in one invocation.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/l96lab/internal/config"
	"github.com/san-kum/l96lab/internal/experiment"
	"github.com/san-kum/l96lab/internal/storage"
)

// Scenario is an ordered list of simulation steps.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step names a preset or carries an inline configuration. A preset
// takes precedence; the inline config then only overrides the seed.
type Step struct {
	Name   string         `yaml:"name"`
	Model  string         `yaml:"model"`
	Preset string         `yaml:"preset"`
	Seed   int64          `yaml:"seed"`
	Config *config.Config `yaml:"config"`
}

// StepResult records a completed step and where its run was stored.
type StepResult struct {
	Name     string
	RunID    string
	Samples  int
	Diverged bool
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

func (s *Step) resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "":
		p := config.GetPreset(s.Model, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %s for model %s", s.Preset, s.Model)
		}
		copied := *p
		cfg = &copied
	case s.Config != nil:
		cfg = s.Config
		if s.Model != "" {
			cfg.Model = s.Model
		}
	default:
		return nil, fmt.Errorf("step %s names neither preset nor config", s.Name)
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	return cfg, nil
}

// RunScenario executes every step in order and stores each trajectory.
// The first failing step aborts the scenario; results of completed
// steps are still returned.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.resolve()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		exp := experiment.New(cfg)
		cl, err := registry.GetClosure(closureOrZero(cfg), cfg.ClosureParams, exp.Rng())
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		sys, err := registry.GetModel(cfg.Model, cfg.Params, cl)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		integ, err := registry.GetIntegrator(cfg.Integrator)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		if err := exp.Setup(sys, integ, registry.DefaultMetrics(sys, cfg.Threshold)); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		tr, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		runID, err := st.Save(storage.RunMetadata{
			Model:       cfg.Model,
			Seed:        cfg.Seed,
			Dt:          cfg.Dt,
			Duration:    cfg.Duration,
			SampleEvery: cfg.SampleEvery,
			Integrator:  cfg.Integrator,
			Closure:     cfg.Closure,
			Params:      cfg.Params,
		}, tr)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		results = append(results, StepResult{
			Name:     step.Name,
			RunID:    runID,
			Samples:  tr.Valid,
			Diverged: tr.Diverged,
		})
	}

	return results, nil
}

func closureOrZero(cfg *config.Config) string {
	if cfg.Closure == "" {
		return "zero"
	}
	return cfg.Closure
}
