// Package descriptor derives the engineered numeric features the mission
// classifiers consume: log transforms and ratios of the canonical physical
// fields, plus topological summaries of the optional per-row light curve.
// Derivation is a pure function of its inputs; identical rows and curves
// always yield bit-identical descriptor sets.
package descriptor

import (
	"math"

	"github.com/exoscan-data/exoplanet.report/internal/config"
	"github.com/exoscan-data/exoplanet.report/internal/mission"
	"github.com/exoscan-data/exoplanet.report/internal/units"
)

// SchemaVersion identifies the descriptor list below. Classifier artifacts
// declare the version they were trained against; the router refuses to pair
// an artifact with descriptors from a different version.
const SchemaVersion = "tda-v1"

// Set holds one row's derived descriptors in the fixed schema order.
type Set struct {
	LogOrbitalPeriod float64 // log10 of orbital period (days)
	LogTransitDepth  float64 // log10 of transit depth (ppm)
	LogPlanetRadius  float64 // log10 of planet radius (Earth radii)
	LogInsolation    float64 // log10 of insolation flux
	RadiusRatio      float64 // Rp/Rs, dimensionless
	DutyCycle        float64 // transit duration / orbital period

	// Topological descriptors of the light curve. Dim0 summarises the
	// sublevel-set persistence of the flux series (dips), dim1 the
	// superlevel-set persistence (peaks).
	TDAEntropyDim0 float64
	TDAEntropyDim1 float64
	TDATotalDim0   float64
	TDATotalDim1   float64

	// CurveUsed records whether the TDA descriptors came from real samples
	// or from the trained fallback values.
	CurveUsed bool
}

var descriptorNames = []string{
	"log_orbital_period",
	"log_transit_depth",
	"log_planet_radius",
	"log_insolation",
	"radius_ratio",
	"duty_cycle",
	"tda_entropy_dim0",
	"tda_entropy_dim1",
	"tda_total_dim0",
	"tda_total_dim1",
}

// Names returns the descriptor names in schema order.
func Names() []string {
	out := make([]string, len(descriptorNames))
	copy(out, descriptorNames)
	return out
}

// Values returns the descriptor values in the same order as Names.
func (s Set) Values() []float64 {
	return []float64{
		s.LogOrbitalPeriod,
		s.LogTransitDepth,
		s.LogPlanetRadius,
		s.LogInsolation,
		s.RadiusRatio,
		s.DutyCycle,
		s.TDAEntropyDim0,
		s.TDAEntropyDim1,
		s.TDATotalDim0,
		s.TDATotalDim1,
	}
}

// Engine derives descriptor sets. Read-only after construction.
type Engine struct {
	// fallbacks are substituted for the four TDA descriptors when a row has
	// no light-curve samples. They must match what the classifiers were
	// trained to see for curveless rows.
	fallbacks [4]float64
}

// NewEngine builds an Engine from the bridge configuration.
func NewEngine(cfg *config.BridgeConfig) *Engine {
	return &Engine{fallbacks: cfg.GetCurveFallbacks()}
}

// logFloor keeps log10 finite for zero inputs that survive range validation.
const logFloor = 1e-10

func safeLog10(v float64) float64 {
	if v < logFloor {
		v = logFloor
	}
	return math.Log10(v)
}

// Derive computes the descriptor set for one sanitized canonical row. The
// curve slice holds the row's light-curve flux samples and may be nil; when
// it is, the four TDA descriptors take the fixed fallback values rather than
// being recomputed from the canonical fields.
func (e *Engine) Derive(row mission.Row, curve []float64) Set {
	s := Set{
		LogOrbitalPeriod: safeLog10(row.Value(mission.OrbitalPeriod)),
		LogTransitDepth:  safeLog10(row.Value(mission.TransitDepth)),
		LogPlanetRadius:  safeLog10(row.Value(mission.PlanetRadius)),
		LogInsolation:    safeLog10(row.Value(mission.Insolation)),
	}

	if rs := row.Value(mission.StellarRadius) * units.EarthRadiiPerSolar; rs > 0 {
		s.RadiusRatio = row.Value(mission.PlanetRadius) / rs
	}
	if period := row.Value(mission.OrbitalPeriod) * units.HoursPerDay; period > 0 {
		s.DutyCycle = row.Value(mission.TransitDuration) / period
	}

	if len(curve) == 0 {
		s.TDAEntropyDim0 = e.fallbacks[0]
		s.TDAEntropyDim1 = e.fallbacks[1]
		s.TDATotalDim0 = e.fallbacks[2]
		s.TDATotalDim1 = e.fallbacks[3]
		return s
	}

	dim0 := sublevelPersistence(curve)
	dim1 := superlevelPersistence(curve)
	s.TDAEntropyDim0 = persistenceEntropy(dim0)
	s.TDAEntropyDim1 = persistenceEntropy(dim1)
	s.TDATotalDim0 = totalPersistence(dim0)
	s.TDATotalDim1 = totalPersistence(dim1)
	s.CurveUsed = true
	return s
}
