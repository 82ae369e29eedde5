package config

import "github.com/san-kum/l96lab/internal/model"

var Presets = map[string]map[string]*Config{
	"twoscale": {
		// Reference parameters from the literature.
		"wilks": {
			Model: "twoscale", Integrator: "rk4",
			Dt: 0.005, Duration: 20.0, SampleEvery: 0.01, Spinup: 2.0,
			Params: model.Params{K: 8, J: 32, F: 18, H: 1, B: 10, C: 10},
		},
		"classic": {
			Model: "twoscale", Integrator: "rk4",
			Dt: 0.005, Duration: 20.0, SampleEvery: 0.01, Spinup: 2.0,
			Params: model.Params{K: 8, J: 32, F: 10, H: 1, B: 10, C: 10},
		},
		"weak-coupling": {
			Model: "twoscale", Integrator: "rk4",
			Dt: 0.005, Duration: 20.0, SampleEvery: 0.01, Spinup: 2.0,
			Params: model.Params{K: 8, J: 32, F: 18, H: 0.5, B: 10, C: 10},
		},
		"training": {
			Model: "twoscale", Integrator: "rk4",
			Dt: 0.005, Duration: 100.0, SampleEvery: 0.01, Spinup: 5.0,
			RecordFast: true,
			Params:     model.Params{K: 8, J: 32, F: 18, H: 1, B: 10, C: 10},
		},
	},
	"gcm": {
		"free": {
			Model: "gcm", Integrator: "euler", Closure: "zero",
			Dt: 0.01, Duration: 20.0, SampleEvery: 0.01,
			Params: model.Params{K: 8, J: 32, F: 18, H: 1, B: 10, C: 10},
		},
		"tuned": {
			Model: "gcm", Integrator: "euler", Closure: "constant",
			Dt: 0.01, Duration: 20.0, SampleEvery: 0.01,
			Params:        model.Params{K: 8, J: 32, F: 18, H: 1, B: 10, C: 10},
			ClosureParams: ClosureConfig{Constant: -1.0},
		},
		"stochastic": {
			Model: "gcm", Integrator: "euler", Closure: "stochastic",
			Dt: 0.01, Duration: 20.0, SampleEvery: 0.01, Seed: 42,
			Params:        model.Params{K: 8, J: 32, F: 18, H: 1, B: 10, C: 10},
			ClosureParams: ClosureConfig{Phi: 0.984, Sigma: 1.0},
		},
	},
}

func GetPreset(modelName, preset string) *Config {
	modelPresets, ok := Presets[modelName]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(modelName string) []string {
	modelPresets, ok := Presets[modelName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
