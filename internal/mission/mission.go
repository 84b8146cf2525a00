// Package mission defines the three supported survey missions, the canonical
// observation schema they are reconciled into, and the per-mission column
// mappings used to translate raw archive exports.
package mission

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMission is returned when a mission identifier is not one of the
// supported surveys. It aborts the whole upload before any row is processed.
var ErrUnknownMission = errors.New("unknown mission")

// ID identifies one of the supported survey missions. The set is closed:
// routing tables are keyed by ID and cover every value exhaustively, so an
// unsupported survey can only fail at Resolve, never deeper in the pipeline.
type ID uint8

const (
	// Kepler is the Kepler prime mission (KOI cumulative table).
	Kepler ID = iota + 1
	// K2 is the extended K2 mission (candidates table).
	K2
	// TESS is the Transiting Exoplanet Survey Satellite (TOI table).
	TESS
)

// All returns the supported missions in a fixed order.
func All() []ID {
	return []ID{Kepler, K2, TESS}
}

// String returns the display name of the mission.
func (id ID) String() string {
	switch id {
	case Kepler:
		return "Kepler"
	case K2:
		return "K2"
	case TESS:
		return "TESS"
	default:
		return fmt.Sprintf("mission(%d)", uint8(id))
	}
}

// Parse maps a mission name (case-insensitive) to its ID.
func Parse(name string) (ID, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "KEPLER":
		return Kepler, nil
	case "K2":
		return K2, nil
	case "TESS":
		return TESS, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMission, name)
	}
}

// Field indexes one canonical observation field. Canonical fields are the
// physical quantities shared by all three archives after unit conversion.
type Field int

const (
	// OrbitalPeriod is the orbital period in days.
	OrbitalPeriod Field = iota
	// TransitDuration is the transit duration in hours.
	TransitDuration
	// TransitDepth is the transit depth in parts-per-million.
	TransitDepth
	// PlanetRadius is the planetary radius in Earth radii.
	PlanetRadius
	// EquilibriumTemp is the planetary equilibrium temperature in Kelvin.
	EquilibriumTemp
	// Insolation is the insolation flux in Earth flux units.
	Insolation
	// StellarTeff is the stellar effective temperature in Kelvin.
	StellarTeff
	// StellarLogg is the stellar surface gravity, log10(cm/s^2).
	StellarLogg
	// StellarRadius is the stellar radius in Solar radii.
	StellarRadius
	// RightAscension is the right ascension in decimal degrees.
	RightAscension
	// Declination is the declination in decimal degrees.
	Declination
	// Magnitude is the mission-band apparent magnitude.
	Magnitude

	numFields
)

var fieldNames = [numFields]string{
	OrbitalPeriod:   "orbital_period_days",
	TransitDuration: "transit_duration_hours",
	TransitDepth:    "transit_depth_ppm",
	PlanetRadius:    "planet_radius_re",
	EquilibriumTemp: "equilibrium_temp_k",
	Insolation:      "insolation_flux",
	StellarTeff:     "stellar_teff_k",
	StellarLogg:     "stellar_logg",
	StellarRadius:   "stellar_radius_rs",
	RightAscension:  "ra_deg",
	Declination:     "dec_deg",
	Magnitude:       "magnitude",
}

// NumFields is the size of the canonical field set.
const NumFields = int(numFields)

// Name returns the canonical column name for the field.
func (f Field) Name() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Fields returns every canonical field in schema order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// FieldNames returns the canonical column names in schema order.
func FieldNames() []string {
	out := make([]string, numFields)
	for i, f := range Fields() {
		out[i] = f.Name()
	}
	return out
}

// Row is one observation in canonical form. Every field holds either a
// validated numeric value or an explicit missing marker; raw strings never
// survive past the sanitizer.
type Row struct {
	values  [numFields]float64
	present [numFields]bool
}

// Set stores a validated numeric value for the field.
func (r *Row) Set(f Field, v float64) {
	r.values[f] = v
	r.present[f] = true
}

// Clear marks the field as missing.
func (r *Row) Clear(f Field) {
	r.values[f] = 0
	r.present[f] = false
}

// Get returns the field value and whether it is present.
func (r *Row) Get(f Field) (float64, bool) {
	return r.values[f], r.present[f]
}

// Value returns the field value, or 0 when the field is missing. Use Get when
// the distinction matters.
func (r *Row) Value(f Field) float64 {
	return r.values[f]
}

// Complete reports whether every canonical field holds a value. The sanitizer
// guarantees this for every row it emits; descriptor and model code rely on it.
func (r *Row) Complete() bool {
	for _, p := range r.present {
		if !p {
			return false
		}
	}
	return true
}

// RawRow holds the mission-mapped cells of one raw record before
// sanitisation: per canonical field, the untouched cell text, the unit scale
// the registry assigned to the source column, and a presence marker. Absent
// source columns and empty cells are simply not present — imputation deals
// with them downstream.
type RawRow struct {
	texts   [numFields]string
	scales  [numFields]float64
	present [numFields]bool
}

// setRaw records the raw cell text and unit scale for a field.
func (r *RawRow) setRaw(f Field, text string, scale float64) {
	r.texts[f] = text
	r.scales[f] = scale
	r.present[f] = true
}

// Raw returns the raw cell text, its unit scale and whether the source column
// supplied a value for this field.
func (r *RawRow) Raw(f Field) (text string, scale float64, ok bool) {
	if !r.present[f] {
		return "", 1, false
	}
	return r.texts[f], r.scales[f], true
}
