package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/exoscan-data/exoplanet.report/internal/mission"
)

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyBridgeConfig()

	if got := cfg.GetWorkers(); got != 4 {
		t.Errorf("GetWorkers() = %d, want 4", got)
	}
	if got := cfg.GetMaxRows(); got != 200 {
		t.Errorf("GetMaxRows() = %d, want 200", got)
	}
	if got := cfg.GetCurveColumn(); got != "lc_flux" {
		t.Errorf("GetCurveColumn() = %q, want lc_flux", got)
	}
}

func TestEveryFieldHasAPolicy(t *testing.T) {
	cfg := EmptyBridgeConfig()
	for _, f := range mission.Fields() {
		strategy := cfg.GetFieldStrategy(f)
		switch strategy {
		case StrategyMedian, StrategyDefault, StrategyZero:
		default:
			t.Errorf("field %v: unexpected default strategy %q", f, strategy)
		}
		min, max := cfg.GetFieldRange(f)
		if min > max {
			t.Errorf("field %v: default range inverted (%v > %v)", f, min, max)
		}
		fill := cfg.GetFieldFill(f)
		if fill < min || fill > max {
			t.Errorf("field %v: fill %v outside its own range [%v, %v]", f, fill, min, max)
		}
	}
}

func TestValidateRejectsFillOutsideRange(t *testing.T) {
	// A fill the sanitizer would impute must survive the sanitizer's own
	// range check, whether the fill or the range was reconfigured.
	fill := -5.0
	cfg := &BridgeConfig{Fields: map[string]FieldPolicy{
		mission.PlanetRadius.Name(): {Fill: &fill},
	}}
	if err := cfg.Validate(); err == nil {
		t.Error("fill below the field minimum passed validation")
	}

	min := 100.0
	cfg = &BridgeConfig{Fields: map[string]FieldPolicy{
		mission.PlanetRadius.Name(): {Min: &min},
	}}
	if err := cfg.Validate(); err == nil {
		t.Error("range excluding the default fill passed validation")
	}

	inRange := 150.0
	cfg = &BridgeConfig{Fields: map[string]FieldPolicy{
		mission.PlanetRadius.Name(): {Min: &min, Fill: &inRange},
	}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("fill inside the reconfigured range rejected: %v", err)
	}
}

func TestZeroStrategyAlwaysFillsZero(t *testing.T) {
	zero := StrategyZero
	fill := 99.0
	cfg := &BridgeConfig{Fields: map[string]FieldPolicy{
		mission.PlanetRadius.Name(): {Strategy: &zero, Fill: &fill},
	}}
	if got := cfg.GetFieldFill(mission.PlanetRadius); got != 0 {
		t.Errorf("zero strategy fill = %v, want 0", got)
	}
}

func TestLoadBridgeConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.json")
	body := `{
		"workers": 8,
		"max_rows": 50,
		"curve_fallback_entropy_dim0": 1.25,
		"fields": {
			"planet_radius_re": {"strategy": "default", "fill": 1.8}
		}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadBridgeConfig(path)
	if err != nil {
		t.Fatalf("LoadBridgeConfig: %v", err)
	}
	if cfg.GetWorkers() != 8 {
		t.Errorf("workers = %d, want 8", cfg.GetWorkers())
	}
	if cfg.GetMaxRows() != 50 {
		t.Errorf("max_rows = %d, want 50", cfg.GetMaxRows())
	}
	if got := cfg.GetCurveFallbacks(); got[0] != 1.25 {
		t.Errorf("curve fallback entropy dim0 = %v, want 1.25", got[0])
	}
	if got := cfg.GetFieldFill(mission.PlanetRadius); got != 1.8 {
		t.Errorf("planet radius fill = %v, want 1.8", got)
	}
	// Unconfigured fields keep their defaults.
	if got := cfg.GetFieldStrategy(mission.StellarLogg); got != StrategyDefault {
		t.Errorf("stellar logg strategy = %q, want default", got)
	}
}

func TestLoadBridgeConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		body string
	}{
		{"wrong extension", "bridge.yaml", `{}`},
		{"bad json", "bad.json", `{"workers": `},
		{"zero workers", "workers.json", `{"workers": 0}`},
		{"unknown field", "field.json", `{"fields": {"bogus_field": {}}}`},
		{"unknown strategy", "strategy.json", `{"fields": {"planet_radius_re": {"strategy": "mode"}}}`},
		{"inverted range", "range.json", `{"fields": {"planet_radius_re": {"min": 10, "max": 1}}}`},
		{"fill outside range", "fill.json", `{"fields": {"planet_radius_re": {"fill": -5}}}`},
		{"range excludes default fill", "narrow.json", `{"fields": {"planet_radius_re": {"min": 100, "max": 1000}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadBridgeConfig(path); err == nil {
				t.Errorf("LoadBridgeConfig(%s) succeeded, want error", tt.file)
			}
		})
	}
}
