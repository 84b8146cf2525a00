// Package result maps raw classifier output into the mission-agnostic
// presentation schema: a categorical label, a display class tag, a
// confidence in [0,1] and its derived uncertainty, alongside the canonical
// physical fields the presentation layer renders.
package result

import (
	"fmt"
	"strings"

	"github.com/exoscan-data/exoplanet.report/internal/mission"
	"github.com/exoscan-data/exoplanet.report/internal/model"
)

// Status describes how one prediction code is presented.
type Status struct {
	Label string
	Class string
}

// statusByCode mirrors the presentation layer's class mapping.
var statusByCode = map[int]Status{
	0: {Label: "Candidate", Class: "prediction-candidate"},
	1: {Label: "Confirmed", Class: "prediction-confirmed"},
	2: {Label: "False Positive", Class: "prediction-false-positive"},
}

// unknownStatus is used for any code outside the trained class set.
var unknownStatus = Status{Label: "Unknown", Class: "prediction-unknown"}

// StatusFor returns the presentation status for a prediction code.
func StatusFor(code int) Status {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return unknownStatus
}

// Record is one finalised output row. Created per input row, never mutated
// afterwards.
type Record struct {
	Index       int     `json:"index"`
	Code        int     `json:"prediction_code"`
	Label       string  `json:"prediction_label"`
	Class       string  `json:"prediction_class"`
	Confidence  float64 `json:"confidence"`
	Uncertainty float64 `json:"uncertainty"`

	// Canonical physical fields carried through for presentation,
	// formatted uniformly for every mission.
	PlanetRadius    string `json:"planet_radius"`
	StellarRadius   string `json:"stellar_radius"`
	OrbitalPeriod   string `json:"orbital_period"`
	EquilibriumTemp string `json:"equilibrium_temp"`

	// Imputed lists the canonical fields the sanitizer had to fill.
	Imputed []string `json:"imputed,omitempty"`
}

// Header is the fixed column set of the unified output table.
func Header() []string {
	return []string{
		"Prediction",
		"Prediction Label",
		"Confidence",
		"Uncertainty",
		"Planet Radius",
		"Stellar Radius",
		"Orbital Period",
		"Equilibrium Temp [K]",
	}
}

// Normalize builds the output record for one classified row. Confidence is
// clamped to [0,1]; uncertainty is 1 - confidence, a monotonic decreasing
// function of it.
func Normalize(index int, row mission.Row, p model.Prediction, imputed []mission.Field) Record {
	confidence := p.Score
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	status := StatusFor(p.Code)

	var imputedNames []string
	for _, f := range imputed {
		imputedNames = append(imputedNames, f.Name())
	}

	return Record{
		Index:           index,
		Code:            p.Code,
		Label:           status.Label,
		Class:           status.Class,
		Confidence:      confidence,
		Uncertainty:     1 - confidence,
		PlanetRadius:    FormatValue(row.Value(mission.PlanetRadius)),
		StellarRadius:   FormatValue(row.Value(mission.StellarRadius)),
		OrbitalPeriod:   FormatValue(row.Value(mission.OrbitalPeriod)),
		EquilibriumTemp: FormatValue(row.Value(mission.EquilibriumTemp)),
		Imputed:         imputedNames,
	}
}

// CSVRow renders the record as one row of the unified table, column order
// matching Header.
func (r Record) CSVRow() []string {
	return []string{
		fmt.Sprintf("%d", r.Code),
		r.Label,
		FormatValue(r.Confidence),
		FormatValue(r.Uncertainty),
		r.PlanetRadius,
		r.StellarRadius,
		r.OrbitalPeriod,
		r.EquilibriumTemp,
	}
}

// FormatValue renders a numeric value for presentation: three decimal
// places with trailing zeros (and a bare trailing point) trimmed, applied
// identically for every mission.
func FormatValue(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
