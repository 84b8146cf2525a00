package sanitize

import (
	"math"
	"testing"

	"github.com/exoscan-data/exoplanet.report/internal/config"
	"github.com/exoscan-data/exoplanet.report/internal/mission"
)

func mapKepler(t *testing.T, header, record []string) mission.RawRow {
	t.Helper()
	schema, err := mission.Resolve("Kepler")
	if err != nil {
		t.Fatalf("Resolve(Kepler): %v", err)
	}
	return schema.Map(header, record)
}

func TestSanitizeAlwaysCompletesRow(t *testing.T) {
	s := New(config.EmptyBridgeConfig())

	// Only two source columns present; every other field must be imputed.
	raw := mapKepler(t, []string{"koi_period", "koi_prad"}, []string{"10.5", "2.3"})
	row, imputed := s.Sanitize(raw)

	if !row.Complete() {
		t.Fatal("sanitized row is not complete")
	}
	if got := row.Value(mission.OrbitalPeriod); got != 10.5 {
		t.Errorf("orbital period = %v, want 10.5", got)
	}
	if got := row.Value(mission.PlanetRadius); got != 2.3 {
		t.Errorf("planet radius = %v, want 2.3", got)
	}
	if len(imputed) != mission.NumFields-2 {
		t.Errorf("imputed %d fields, want %d", len(imputed), mission.NumFields-2)
	}
}

func TestSanitizeImputesConfiguredValue(t *testing.T) {
	cfg := config.EmptyBridgeConfig()
	s := New(cfg)

	// koi_srad missing: stellar radius takes its configured fill value.
	raw := mapKepler(t, []string{"koi_period", "koi_prad"}, []string{"10.5", "2.3"})
	row, imputed := s.Sanitize(raw)

	want := cfg.GetFieldFill(mission.StellarRadius)
	if got := row.Value(mission.StellarRadius); got != want {
		t.Errorf("imputed stellar radius = %v, want %v", got, want)
	}

	found := false
	for _, f := range imputed {
		if f == mission.StellarRadius {
			found = true
		}
	}
	if !found {
		t.Error("stellar radius not reported as imputed")
	}
}

func TestSanitizeTreatsMalformedAsMissing(t *testing.T) {
	cfg := config.EmptyBridgeConfig()
	s := New(cfg)

	tests := []struct {
		name string
		cell string
	}{
		{"non-numeric", "not-a-number"},
		{"nan literal", "NaN"},
		{"positive infinity", "+Inf"},
		{"out of range", "-42.0"}, // negative planet radius
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mapKepler(t, []string{"koi_prad"}, []string{tt.cell})
			row, imputed := s.Sanitize(raw)
			if !row.Complete() {
				t.Fatal("row incomplete")
			}
			if got := row.Value(mission.PlanetRadius); got != cfg.GetFieldFill(mission.PlanetRadius) {
				t.Errorf("planet radius = %v, want fill %v", got, cfg.GetFieldFill(mission.PlanetRadius))
			}
			if len(imputed) == 0 {
				t.Error("malformed cell not reported as imputed")
			}
		})
	}
}

func TestSanitizeAppliesUnitScale(t *testing.T) {
	s := New(config.EmptyBridgeConfig())
	schema, err := mission.Resolve("K2")
	if err != nil {
		t.Fatal(err)
	}

	// K2 depth arrives in percent; 0.12% is 1200 ppm canonically.
	raw := schema.Map([]string{"pl_trandep"}, []string{"0.12"})
	row, _ := s.Sanitize(raw)
	if got := row.Value(mission.TransitDepth); math.Abs(got-1200) > 1e-9 {
		t.Errorf("transit depth = %v ppm, want 1200", got)
	}
}

func TestSanitizeNoFieldEverNonFinite(t *testing.T) {
	s := New(config.EmptyBridgeConfig())
	raw := mapKepler(t,
		[]string{"koi_period", "koi_duration", "koi_depth", "koi_prad"},
		[]string{"Inf", "-Inf", "NaN", "1e308"})
	row, _ := s.Sanitize(raw)

	for _, f := range mission.Fields() {
		v := row.Value(f)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("field %v is non-finite after sanitisation: %v", f, v)
		}
	}
}
