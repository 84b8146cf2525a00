// Package units provides shared conversion constants for the physical
// quantities carried by the canonical observation schema. The canonical
// table stores transit depth in parts-per-million, durations in hours,
// orbital periods in days, and radii in Earth/Solar units; archive exports
// that use different units are converted on ingest.
package units

// Conversion factors to canonical units.
const (
	// PPMPerPercent converts a transit depth expressed in percent to
	// parts-per-million. The K2 archive exports depth as a percentage.
	PPMPerPercent = 1e4

	// HoursPerDay converts a duration in days to hours. Kepler cumulative
	// exports report transit duration in hours already; the constant exists
	// for archives that report days.
	HoursPerDay = 24.0

	// EarthRadiiPerSolar converts a radius in Solar radii to Earth radii.
	EarthRadiiPerSolar = 109.076
)
