package mission

import (
	"strings"

	"github.com/exoscan-data/exoplanet.report/internal/units"
)

// sourceColumn binds one raw archive column to a canonical field together
// with the multiplicative factor that converts the archive's unit into the
// canonical one.
type sourceColumn struct {
	field Field
	scale float64
}

// Schema is the immutable column mapping for one mission. Loaded once at
// process start and shared read-only across uploads.
type Schema struct {
	id      ID
	columns map[string]sourceColumn
}

// ID returns the mission this schema belongs to.
func (s *Schema) ID() ID { return s.id }

// Resolve returns the schema registered for the named mission, or
// ErrUnknownMission when the name is not one of the supported surveys.
func Resolve(name string) (*Schema, error) {
	id, err := Parse(name)
	if err != nil {
		return nil, err
	}
	return id.Schema(), nil
}

// Schema returns the immutable column mapping for the mission.
func (id ID) Schema() *Schema {
	switch id {
	case Kepler:
		return keplerSchema
	case K2:
		return k2Schema
	case TESS:
		return tessSchema
	default:
		return nil
	}
}

// Map translates one raw record into a RawRow keyed by canonical field.
// Column matching is case-insensitive on the header. Columns the registry
// does not recognise are dropped silently: archive exports routinely grow
// extra metadata columns and the bridge must keep accepting them. Canonical
// fields whose source column is absent (or whose cell is empty) come back
// not-present; the sanitizer imputes them later.
func (s *Schema) Map(header []string, record []string) RawRow {
	var row RawRow
	for i, col := range header {
		if i >= len(record) {
			break
		}
		src, ok := s.columns[strings.ToLower(strings.TrimSpace(col))]
		if !ok {
			continue
		}
		cell := strings.TrimSpace(record[i])
		if cell == "" {
			continue
		}
		row.setRaw(src.field, cell, src.scale)
	}
	return row
}

// newSchema builds a schema from a raw-column table, lowering the column
// names so lookup is case-insensitive.
func newSchema(id ID, cols map[string]sourceColumn) *Schema {
	lowered := make(map[string]sourceColumn, len(cols))
	for name, src := range cols {
		lowered[strings.ToLower(name)] = src
	}
	return &Schema{id: id, columns: lowered}
}

// Per-mission column tables. Source column names follow the NASA Exoplanet
// Archive exports for each table: KOI cumulative (Kepler), K2 planets and
// candidates, and TESS TOI. Scales convert archive units to canonical units;
// most quantities already share units across the archives.
var (
	keplerSchema = newSchema(Kepler, map[string]sourceColumn{
		"koi_period":   {OrbitalPeriod, 1},
		"koi_duration": {TransitDuration, 1},
		"koi_depth":    {TransitDepth, 1},
		"koi_prad":     {PlanetRadius, 1},
		"koi_teq":      {EquilibriumTemp, 1},
		"koi_insol":    {Insolation, 1},
		"koi_steff":    {StellarTeff, 1},
		"koi_slogg":    {StellarLogg, 1},
		"koi_srad":     {StellarRadius, 1},
		"ra":           {RightAscension, 1},
		"dec":          {Declination, 1},
		"koi_kepmag":   {Magnitude, 1},
	})

	// K2 reports transit depth in percent and duration in hours; the
	// candidates table carries no equilibrium-temperature column in older
	// exports, so pl_eqt may simply be absent.
	k2Schema = newSchema(K2, map[string]sourceColumn{
		"pl_orbper":  {OrbitalPeriod, 1},
		"pl_trandur": {TransitDuration, 1},
		"pl_trandep": {TransitDepth, units.PPMPerPercent},
		"pl_rade":    {PlanetRadius, 1},
		"pl_eqt":     {EquilibriumTemp, 1},
		"pl_insol":   {Insolation, 1},
		"st_teff":    {StellarTeff, 1},
		"st_logg":    {StellarLogg, 1},
		"st_rad":     {StellarRadius, 1},
		"ra":         {RightAscension, 1},
		"dec":        {Declination, 1},
		"sy_vmag":    {Magnitude, 1},
	})

	tessSchema = newSchema(TESS, map[string]sourceColumn{
		"pl_orbper":   {OrbitalPeriod, 1},
		"pl_trandurh": {TransitDuration, 1},
		"pl_trandep":  {TransitDepth, 1},
		"pl_rade":     {PlanetRadius, 1},
		"pl_eqt":      {EquilibriumTemp, 1},
		"pl_insol":    {Insolation, 1},
		"st_teff":     {StellarTeff, 1},
		"st_logg":     {StellarLogg, 1},
		"st_rad":      {StellarRadius, 1},
		"ra":          {RightAscension, 1},
		"dec":         {Declination, 1},
		"st_tmag":     {Magnitude, 1},
	})
)
