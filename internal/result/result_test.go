package result

import (
	"testing"

	"github.com/exoscan-data/exoplanet.report/internal/mission"
	"github.com/exoscan-data/exoplanet.report/internal/model"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code      int
		wantLabel string
		wantClass string
	}{
		{0, "Candidate", "prediction-candidate"},
		{1, "Confirmed", "prediction-confirmed"},
		{2, "False Positive", "prediction-false-positive"},
		{3, "Unknown", "prediction-unknown"},
		{-1, "Unknown", "prediction-unknown"},
	}
	for _, tt := range tests {
		got := StatusFor(tt.code)
		if got.Label != tt.wantLabel || got.Class != tt.wantClass {
			t.Errorf("StatusFor(%d) = %+v, want {%s %s}", tt.code, got, tt.wantLabel, tt.wantClass)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.3, "2.3"},
		{2.300, "2.3"},
		{10.5, "10.5"},
		{3.14159, "3.142"},
		{5, "5"},
		{0, "0"},
		{-0.0001, "0"},
		{0.25, "0.25"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	var row mission.Row
	for _, f := range mission.Fields() {
		row.Set(f, 1)
	}
	row.Set(mission.PlanetRadius, 2.3)
	row.Set(mission.OrbitalPeriod, 10.5)

	rec := Normalize(7, row, model.Prediction{Code: 0, Score: 0.8}, []mission.Field{mission.StellarRadius})

	if rec.Index != 7 {
		t.Errorf("Index = %d, want 7", rec.Index)
	}
	if rec.Label != "Candidate" || rec.Class != "prediction-candidate" {
		t.Errorf("status = %s/%s", rec.Label, rec.Class)
	}
	if rec.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", rec.Confidence)
	}
	if got := rec.Uncertainty; got != 1-0.8 {
		t.Errorf("Uncertainty = %v, want 0.2", got)
	}
	if rec.PlanetRadius != "2.3" || rec.OrbitalPeriod != "10.5" {
		t.Errorf("physical fields = %s / %s", rec.PlanetRadius, rec.OrbitalPeriod)
	}
	if len(rec.Imputed) != 1 || rec.Imputed[0] != mission.StellarRadius.Name() {
		t.Errorf("Imputed = %v", rec.Imputed)
	}
}

func TestNormalizeClampsConfidence(t *testing.T) {
	var row mission.Row
	for _, f := range mission.Fields() {
		row.Set(f, 1)
	}

	high := Normalize(0, row, model.Prediction{Code: 1, Score: 1.7}, nil)
	if high.Confidence != 1 || high.Uncertainty != 0 {
		t.Errorf("clamped high = %v / %v", high.Confidence, high.Uncertainty)
	}
	low := Normalize(0, row, model.Prediction{Code: 1, Score: -0.2}, nil)
	if low.Confidence != 0 || low.Uncertainty != 1 {
		t.Errorf("clamped low = %v / %v", low.Confidence, low.Uncertainty)
	}
}

func TestCSVRowMatchesHeader(t *testing.T) {
	var row mission.Row
	for _, f := range mission.Fields() {
		row.Set(f, 1)
	}
	rec := Normalize(0, row, model.Prediction{Code: 2, Score: 0.9}, nil)
	if got, want := len(rec.CSVRow()), len(Header()); got != want {
		t.Errorf("CSVRow has %d columns, Header has %d", got, want)
	}
}
