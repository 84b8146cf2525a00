// Package sanitize repairs mission-mapped raw rows into fully populated
// canonical rows. Every canonical field of every emitted row is a finite
// number inside its configured domain range; anything unparsable, non-finite
// or out of range is replaced by the field's configured imputation value.
package sanitize

import (
	"math"
	"strconv"

	"github.com/exoscan-data/exoplanet.report/internal/config"
	"github.com/exoscan-data/exoplanet.report/internal/mission"
)

// fieldPolicy is the resolved per-field sanitisation policy, flattened out of
// the config so the hot path does no map lookups.
type fieldPolicy struct {
	fill     float64
	min, max float64
}

// Sanitizer repairs raw rows. Build once per process from config and share;
// it is read-only after construction.
type Sanitizer struct {
	policies [mission.NumFields]fieldPolicy
}

// New builds a Sanitizer from the bridge configuration.
func New(cfg *config.BridgeConfig) *Sanitizer {
	s := &Sanitizer{}
	for _, f := range mission.Fields() {
		min, max := cfg.GetFieldRange(f)
		s.policies[f] = fieldPolicy{
			fill: cfg.GetFieldFill(f),
			min:  min,
			max:  max,
		}
	}
	return s
}

// Sanitize produces a complete canonical row from a mission-mapped raw row.
// It never fails: malformed cells are treated exactly like absent ones and
// imputed. The returned slice lists the fields that were imputed, in schema
// order, for telemetry; it is nil when nothing was imputed.
func (s *Sanitizer) Sanitize(raw mission.RawRow) (mission.Row, []mission.Field) {
	var row mission.Row
	var imputed []mission.Field

	for _, f := range mission.Fields() {
		p := s.policies[f]
		if v, ok := s.parseField(raw, f, p); ok {
			row.Set(f, v)
			continue
		}
		row.Set(f, p.fill)
		imputed = append(imputed, f)
	}

	return row, imputed
}

// parseField extracts, parses, scales and range-checks one raw field value.
func (s *Sanitizer) parseField(raw mission.RawRow, f mission.Field, p fieldPolicy) (float64, bool) {
	text, scale, ok := raw.Raw(f)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	v *= scale
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < p.min || v > p.max {
		return 0, false
	}
	return v, true
}
