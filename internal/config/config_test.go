package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "twoscale" {
		t.Errorf("expected model twoscale, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.SampleEvery < cfg.Dt {
		t.Error("sample interval should cover at least one step")
	}
	if err := cfg.Params.Validate(); err != nil {
		t.Errorf("default params should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("twoscale", "wilks")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params.F != 18 {
		t.Errorf("expected F=18, got %f", cfg.Params.F)
	}
	if cfg.Params.J != 32 {
		t.Errorf("expected J=32, got %d", cfg.Params.J)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("twoscale", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "wilks"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets("gcm")
	if len(names) == 0 {
		t.Error("expected gcm presets")
	}
	if names := ListPresets("nope"); names != nil {
		t.Error("expected nil for unknown model")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Model = "gcm"
	cfg.Closure = "poly"
	cfg.ClosureParams.Coeffs = []float64{0.001, -0.02, 0.3, 1.5, -4.0}
	cfg.Seed = 99

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Model != "gcm" || loaded.Closure != "poly" || loaded.Seed != 99 {
		t.Errorf("roundtrip mismatch: %+v", loaded)
	}
	if len(loaded.ClosureParams.Coeffs) != 5 {
		t.Errorf("expected 5 coefficients, got %d", len(loaded.ClosureParams.Coeffs))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
