package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/exoscan-data/exoplanet.report/internal/mission"
)

// DefaultConfigPath is the path to the canonical bridge defaults file. The
// compiled-in defaults below mirror it, so running without a config file is
// equivalent to running with an empty one.
const DefaultConfigPath = "config/bridge.defaults.json"

// Imputation strategy tags. Which strategy applies to which canonical field
// is configuration data, not code: the values must track whatever the model
// training preprocessing used, and that changes per artifact generation.
const (
	// StrategyMedian fills a missing field with the training-set median.
	StrategyMedian = "median"
	// StrategyDefault fills a missing field with a fixed domain default.
	StrategyDefault = "default"
	// StrategyZero fills a missing field with zero.
	StrategyZero = "zero"
)

// FieldPolicy configures sanitisation for one canonical field: the accepted
// domain range and the imputation strategy for missing or invalid values.
// Pointer fields distinguish "unset, use default" from explicit values so
// partial config files are safe.
type FieldPolicy struct {
	Strategy *string  `json:"strategy,omitempty"`
	Fill     *float64 `json:"fill,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// BridgeConfig is the root configuration for the inference bridge. The same
// JSON schema is used for the startup config file and for test fixtures.
type BridgeConfig struct {
	// Workers bounds row-level parallelism within one upload.
	Workers *int `json:"workers,omitempty"`
	// MaxRows caps how many result rows an upload response carries.
	MaxRows *int `json:"max_rows,omitempty"`
	// CurveColumn names the optional per-row light-curve column.
	CurveColumn *string `json:"curve_column,omitempty"`

	// Fallback values for the curve-dependent descriptors when a row has no
	// light-curve samples. These must match what the classifiers were
	// trained with; changing them silently skews every prediction.
	CurveFallbackEntropyDim0 *float64 `json:"curve_fallback_entropy_dim0,omitempty"`
	CurveFallbackEntropyDim1 *float64 `json:"curve_fallback_entropy_dim1,omitempty"`
	CurveFallbackTotalDim0   *float64 `json:"curve_fallback_total_dim0,omitempty"`
	CurveFallbackTotalDim1   *float64 `json:"curve_fallback_total_dim1,omitempty"`

	// Fields maps canonical field names to their sanitisation policy.
	Fields map[string]FieldPolicy `json:"fields,omitempty"`
}

// fieldDefault holds the compiled-in policy for one canonical field. Fill
// values for the median strategy are the training-set medians from the
// archive cumulative tables the classifiers were trained on.
type fieldDefault struct {
	strategy string
	fill     float64
	min, max float64
}

var fieldDefaults = map[mission.Field]fieldDefault{
	mission.OrbitalPeriod:   {StrategyMedian, 9.48, 0, 1e5},
	mission.TransitDuration: {StrategyMedian, 3.62, 0, 1e3},
	mission.TransitDepth:    {StrategyMedian, 424.0, 0, 1e6},
	mission.PlanetRadius:    {StrategyMedian, 2.23, 0, 1e3},
	mission.EquilibriumTemp: {StrategyMedian, 872.0, 0, 2e4},
	mission.Insolation:      {StrategyMedian, 170.0, 0, 1e7},
	mission.StellarTeff:     {StrategyMedian, 5767.0, 1000, 5e4},
	mission.StellarLogg:     {StrategyDefault, 4.438, 0, 8},
	mission.StellarRadius:   {StrategyDefault, 1.0, 0, 1e4},
	mission.RightAscension:  {StrategyZero, 0, 0, 360},
	mission.Declination:     {StrategyZero, 0, -90, 90},
	mission.Magnitude:       {StrategyMedian, 13.5, -5, 30},
}

// EmptyBridgeConfig returns a BridgeConfig with all fields unset. Every Get*
// accessor falls back to the compiled-in defaults.
func EmptyBridgeConfig() *BridgeConfig {
	return &BridgeConfig{}
}

// LoadBridgeConfig loads a BridgeConfig from a JSON file. The path must have
// a .json extension and the file must be under 1MB. Fields omitted from the
// JSON keep their defaults, so partial configs are safe.
func LoadBridgeConfig(path string) (*BridgeConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyBridgeConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values that would corrupt the
// pipeline rather than merely tune it.
func (c *BridgeConfig) Validate() error {
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", *c.Workers)
	}
	if c.MaxRows != nil && *c.MaxRows < 1 {
		return fmt.Errorf("max_rows must be >= 1, got %d", *c.MaxRows)
	}
	knownFields := map[string]bool{}
	for _, f := range mission.Fields() {
		knownFields[f.Name()] = true
	}
	for name, policy := range c.Fields {
		if !knownFields[name] {
			return fmt.Errorf("unknown canonical field %q in fields config", name)
		}
		if policy.Strategy != nil {
			switch *policy.Strategy {
			case StrategyMedian, StrategyDefault, StrategyZero:
			default:
				return fmt.Errorf("field %q: unknown imputation strategy %q", name, *policy.Strategy)
			}
		}
		if policy.Fill != nil && (math.IsNaN(*policy.Fill) || math.IsInf(*policy.Fill, 0)) {
			return fmt.Errorf("field %q: fill value must be finite", name)
		}
		if policy.Min != nil && policy.Max != nil && *policy.Min > *policy.Max {
			return fmt.Errorf("field %q: min %v exceeds max %v", name, *policy.Min, *policy.Max)
		}
	}
	// The effective fill must land inside the effective range, or the
	// sanitizer would impute values its own range check forbids.
	for _, f := range mission.Fields() {
		fill := c.GetFieldFill(f)
		min, max := c.GetFieldRange(f)
		if fill < min || fill > max {
			return fmt.Errorf("field %q: fill %v outside range [%v, %v]", f.Name(), fill, min, max)
		}
	}
	return nil
}

// GetWorkers returns the configured row-parallelism bound, default 4.
func (c *BridgeConfig) GetWorkers() int {
	if c.Workers != nil {
		return *c.Workers
	}
	return 4
}

// GetMaxRows returns the response row cap, default 200.
func (c *BridgeConfig) GetMaxRows() int {
	if c.MaxRows != nil {
		return *c.MaxRows
	}
	return 200
}

// GetCurveColumn returns the name of the optional light-curve column,
// default "lc_flux".
func (c *BridgeConfig) GetCurveColumn() string {
	if c.CurveColumn != nil {
		return *c.CurveColumn
	}
	return "lc_flux"
}

// GetCurveFallbacks returns the four fixed descriptor values substituted when
// a row carries no light-curve samples, in descriptor order: entropy dim0,
// entropy dim1, total persistence dim0, total persistence dim1.
func (c *BridgeConfig) GetCurveFallbacks() [4]float64 {
	out := [4]float64{0, 0, 0, 0}
	if c.CurveFallbackEntropyDim0 != nil {
		out[0] = *c.CurveFallbackEntropyDim0
	}
	if c.CurveFallbackEntropyDim1 != nil {
		out[1] = *c.CurveFallbackEntropyDim1
	}
	if c.CurveFallbackTotalDim0 != nil {
		out[2] = *c.CurveFallbackTotalDim0
	}
	if c.CurveFallbackTotalDim1 != nil {
		out[3] = *c.CurveFallbackTotalDim1
	}
	return out
}

// GetFieldStrategy returns the imputation strategy tag for the field.
func (c *BridgeConfig) GetFieldStrategy(f mission.Field) string {
	if p, ok := c.Fields[f.Name()]; ok && p.Strategy != nil {
		return *p.Strategy
	}
	return fieldDefaults[f].strategy
}

// GetFieldFill returns the value imputed for the field under its strategy.
// The zero strategy always fills with 0 regardless of any configured value.
func (c *BridgeConfig) GetFieldFill(f mission.Field) float64 {
	if c.GetFieldStrategy(f) == StrategyZero {
		return 0
	}
	if p, ok := c.Fields[f.Name()]; ok && p.Fill != nil {
		return *p.Fill
	}
	return fieldDefaults[f].fill
}

// GetFieldRange returns the accepted domain range for the field. Values
// outside the range are treated as missing and imputed.
func (c *BridgeConfig) GetFieldRange(f mission.Field) (min, max float64) {
	d := fieldDefaults[f]
	min, max = d.min, d.max
	if p, ok := c.Fields[f.Name()]; ok {
		if p.Min != nil {
			min = *p.Min
		}
		if p.Max != nil {
			max = *p.Max
		}
	}
	return min, max
}
