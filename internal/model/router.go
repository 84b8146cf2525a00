package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exoscan-data/exoplanet.report/internal/descriptor"
	"github.com/exoscan-data/exoplanet.report/internal/mission"
	"github.com/exoscan-data/exoplanet.report/internal/monitoring"
)

// Router owns the per-mission classifier artifacts. All artifacts load once
// at process start; afterwards the router is read-only, so concurrent
// Predict calls across uploads need no locking.
type Router struct {
	artifacts map[mission.ID]Artifact
}

// fallbackCode returns the class the training pipeline's constant fallback
// predicts for a mission whose trained artifact file is absent.
func fallbackCode(id mission.ID) int {
	if id == mission.TESS {
		return 1
	}
	return 0
}

// defaultFeatureSet is the feature list used by fallback constant artifacts:
// every canonical field followed by every descriptor, in schema order.
func defaultFeatureSet() []string {
	return append(mission.FieldNames(), descriptor.Names()...)
}

// NewRouter loads one artifact per mission from dir, expecting
// <mission>.json files (kepler.json, k2.json, tess.json). A missing
// directory is ErrModelUnavailable and fatal. A missing individual file
// degrades to the constant fallback predictor, loudly logged, matching the
// training pipeline's behaviour for absent model files. A present but
// invalid file is always fatal: a corrupt artifact must never be papered
// over with a fallback.
func NewRouter(dir string) (*Router, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: artifact directory %s: %v", ErrModelUnavailable, dir, err)
	}

	artifacts := make(map[mission.ID]Artifact, len(mission.All()))
	for _, id := range mission.All() {
		path := filepath.Join(dir, strings.ToLower(id.String())+".json")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			monitoring.Logf("model: no trained artifact for %s at %s, using constant fallback", id, path)
			artifacts[id] = NewConstant(defaultFeatureSet(), fallbackCode(id), 0.5)
			continue
		}
		art, err := LoadArtifact(path, descriptor.SchemaVersion)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, id, err)
		}
		monitoring.Logf("model: loaded %s artifact from %s (%d features)", id, path, len(art.FeatureNames()))
		artifacts[id] = art
	}
	return &Router{artifacts: artifacts}, nil
}

// NewRouterWith builds a router from preloaded artifacts. Tests and
// collaborators that manage artifact loading themselves use this.
func NewRouterWith(artifacts map[mission.ID]Artifact) (*Router, error) {
	for _, id := range mission.All() {
		if artifacts[id] == nil {
			return nil, fmt.Errorf("%w: no artifact for %s", ErrModelUnavailable, id)
		}
	}
	copied := make(map[mission.ID]Artifact, len(artifacts))
	for id, a := range artifacts {
		copied[id] = a
	}
	return &Router{artifacts: copied}, nil
}

// Predict assembles the ordered feature vector the mission's artifact
// expects and invokes it. Assembly is by feature name against the canonical
// fields and the descriptor set; any expected name with no source value is
// ErrFeatureShapeMismatch — wrong order or wrong subset must fail here, not
// silently corrupt the prediction.
func (r *Router) Predict(id mission.ID, row mission.Row, set descriptor.Set) (Prediction, error) {
	art, ok := r.artifacts[id]
	if !ok {
		return Prediction{}, fmt.Errorf("%w: %s", ErrModelUnavailable, id)
	}

	vector, err := AssembleVector(art.FeatureNames(), row, set)
	if err != nil {
		return Prediction{}, err
	}
	return art.Predict(vector)
}

// AssembleVector builds a feature vector ordered by the given names from a
// canonical row and its descriptor set.
func AssembleVector(names []string, row mission.Row, set descriptor.Set) ([]float64, error) {
	values := make(map[string]float64, mission.NumFields+len(descriptor.Names()))
	for _, f := range mission.Fields() {
		v, ok := row.Get(f)
		if !ok {
			return nil, fmt.Errorf("%w: canonical field %s missing from row", ErrFeatureShapeMismatch, f.Name())
		}
		values[f.Name()] = v
	}
	descValues := set.Values()
	for i, name := range descriptor.Names() {
		values[name] = descValues[i]
	}

	vector := make([]float64, len(names))
	for i, name := range names {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("%w: artifact expects feature %q, bridge does not produce it",
				ErrFeatureShapeMismatch, name)
		}
		vector[i] = v
	}
	return vector, nil
}
