package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/l96lab/internal/dynamo"
	"github.com/san-kum/l96lab/internal/model"
)

const (
	DefaultDt          = 0.005
	DefaultDuration    = 10.0
	DefaultSampleEvery = 0.01
)

type Config struct {
	Model       string  `yaml:"model"`      // twoscale | gcm
	Integrator  string  `yaml:"integrator"` // euler | rk4 | rk45
	Closure     string  `yaml:"closure"`    // zero | constant | poly | stochastic
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	SampleEvery float64 `yaml:"sample_every"`
	Threshold   float64 `yaml:"threshold"`
	Spinup      float64 `yaml:"spinup"`
	RecordFast  bool    `yaml:"record_fast"`
	RandomInit  bool    `yaml:"random_init"`
	Seed        int64   `yaml:"seed"`

	Params        model.Params  `yaml:"params"`
	ClosureParams ClosureConfig `yaml:"closure_params"`
}

type ClosureConfig struct {
	Constant float64   `yaml:"constant"`
	Coeffs   []float64 `yaml:"coeffs"`
	Phi      float64   `yaml:"phi"`
	Sigma    float64   `yaml:"sigma"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "twoscale",
		Integrator:  "rk4",
		Closure:     "zero",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Threshold:   dynamo.DivergenceThreshold,
		Params:      model.DefaultParams(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunConfig maps the file-level configuration onto the runner's.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		SampleEvery: c.SampleEvery,
		Threshold:   c.Threshold,
		RecordFast:  c.RecordFast,
		Seed:        c.Seed,
	}
}
