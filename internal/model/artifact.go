// Package model loads the immutable per-mission classifier artifacts and
// routes feature vectors into them. Artifacts are opaque predictors as far
// as the rest of the bridge is concerned: the contract is feature assembly
// in the exact order the artifact was trained with, and nothing else.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// ErrModelUnavailable means a mission's classifier artifact could not be
// loaded at startup. It is fatal at startup and never deferred to request
// time.
var ErrModelUnavailable = errors.New("classifier artifact unavailable")

// ErrFeatureShapeMismatch means the assembled feature vector does not match
// the shape the artifact was trained with. It indicates a schema/descriptor/
// artifact version skew and is fatal for the whole upload.
var ErrFeatureShapeMismatch = errors.New("feature shape mismatch")

// Prediction is the raw classifier output for one row.
type Prediction struct {
	// Code is the predicted class index (0 candidate, 1 confirmed,
	// 2 false positive).
	Code int
	// Score is the classifier's confidence for Code, in [0,1].
	Score float64
}

// Artifact is the capability exposed by one trained classifier. Predict is
// pure and deterministic; implementations are read-only after load so
// concurrent calls need no locking.
type Artifact interface {
	// Predict classifies one assembled feature vector.
	Predict(features []float64) (Prediction, error)
	// FeatureNames returns the ordered feature names the artifact expects.
	FeatureNames() []string
}

// artifactManifest is the on-disk JSON form shared by all artifact kinds.
type artifactManifest struct {
	Model            string     `json:"model"`
	Version          string     `json:"version"`
	DescriptorSchema string     `json:"descriptor_schema"`
	Classes          int        `json:"classes"`
	Features         []string   `json:"features"`
	Trees            []treeSpec `json:"trees,omitempty"`
	Value            *float64   `json:"value,omitempty"`
	Score            *float64   `json:"score,omitempty"`
}

type treeSpec struct {
	Nodes []nodeSpec `json:"nodes"`
}

// nodeSpec is one node of a decision tree. A node with a non-nil Leaf is a
// leaf holding the class probability distribution; otherwise it splits on
// Features[Feature] <= Threshold, descending Left on true and Right on false.
type nodeSpec struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Leaf      []float64 `json:"leaf,omitempty"`
}

// LoadArtifact reads and validates a classifier artifact from a JSON file.
// The descriptorSchema argument is the descriptor schema version compiled
// into this binary; an artifact trained against a different version is
// rejected here, at load time, not at request time.
func LoadArtifact(path, descriptorSchema string) (Artifact, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var m artifactManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}

	if m.DescriptorSchema != "" && m.DescriptorSchema != descriptorSchema {
		return nil, fmt.Errorf("artifact %s trained against descriptor schema %q, binary has %q",
			path, m.DescriptorSchema, descriptorSchema)
	}
	if len(m.Features) == 0 {
		return nil, fmt.Errorf("artifact %s declares no features", path)
	}

	switch m.Model {
	case "forest":
		return newForest(m, path)
	case "constant":
		return newConstantFromManifest(m, path)
	default:
		return nil, fmt.Errorf("artifact %s: unknown model kind %q", path, m.Model)
	}
}

// Forest is a serialized decision-forest evaluator. It averages the class
// distributions of its trees' leaves.
type Forest struct {
	features []string
	classes  int
	trees    []treeSpec
	version  string
}

func newForest(m artifactManifest, path string) (*Forest, error) {
	if m.Classes < 2 {
		return nil, fmt.Errorf("artifact %s: forest needs >= 2 classes, got %d", path, m.Classes)
	}
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("artifact %s: forest has no trees", path)
	}
	for ti, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("artifact %s: tree %d is empty", path, ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf != nil {
				if len(node.Leaf) != m.Classes {
					return nil, fmt.Errorf("artifact %s: tree %d node %d leaf has %d classes, want %d",
						path, ti, ni, len(node.Leaf), m.Classes)
				}
				for _, p := range node.Leaf {
					if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
						return nil, fmt.Errorf("artifact %s: tree %d node %d has invalid leaf probability %v",
							path, ti, ni, p)
					}
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= len(m.Features) {
				return nil, fmt.Errorf("artifact %s: tree %d node %d splits on feature %d of %d",
					path, ti, ni, node.Feature, len(m.Features))
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("artifact %s: tree %d node %d has child out of range", path, ti, ni)
			}
		}
	}
	return &Forest{
		features: m.Features,
		classes:  m.Classes,
		trees:    m.Trees,
		version:  m.Version,
	}, nil
}

// FeatureNames returns the ordered feature names the forest was trained with.
func (f *Forest) FeatureNames() []string {
	out := make([]string, len(f.features))
	copy(out, f.features)
	return out
}

// Predict evaluates every tree and averages the leaf distributions. The
// winning class index and its averaged probability form the prediction.
func (f *Forest) Predict(features []float64) (Prediction, error) {
	if len(features) != len(f.features) {
		return Prediction{}, fmt.Errorf("%w: got %d features, artifact expects %d",
			ErrFeatureShapeMismatch, len(features), len(f.features))
	}

	votes := make([]float64, f.classes)
	for _, tree := range f.trees {
		leaf := f.walk(tree, features)
		for c, p := range leaf {
			votes[c] += p
		}
	}

	best := 0
	for c := 1; c < f.classes; c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return Prediction{Code: best, Score: clamp01(votes[best] / float64(len(f.trees)))}, nil
}

// walk descends one tree to its leaf distribution. Node validity was checked
// at load time; the iteration bound guards against cyclic child links.
func (f *Forest) walk(tree treeSpec, features []float64) []float64 {
	idx := 0
	for range tree.Nodes {
		node := tree.Nodes[idx]
		if node.Leaf != nil {
			return node.Leaf
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	// Cycle in the node graph: fall back to a uniform distribution.
	uniform := make([]float64, f.classes)
	for c := range uniform {
		uniform[c] = 1 / float64(f.classes)
	}
	return uniform
}

// Constant is a fixed predictor substituted when a mission's trained
// artifact file is absent. It mirrors the training pipeline's fallback:
// every row gets the same class and a flat score.
type Constant struct {
	features []string
	code     int
	score    float64
}

// NewConstant builds a constant predictor over the given feature names.
func NewConstant(features []string, code int, score float64) *Constant {
	names := make([]string, len(features))
	copy(names, features)
	return &Constant{features: names, code: code, score: clamp01(score)}
}

func newConstantFromManifest(m artifactManifest, path string) (*Constant, error) {
	if m.Value == nil {
		return nil, fmt.Errorf("artifact %s: constant model missing value", path)
	}
	score := 0.5
	if m.Score != nil {
		score = *m.Score
	}
	return NewConstant(m.Features, int(math.Round(*m.Value)), score), nil
}

// FeatureNames returns the ordered feature names the predictor accepts.
func (c *Constant) FeatureNames() []string {
	out := make([]string, len(c.features))
	copy(out, c.features)
	return out
}

// Predict returns the fixed prediction after the usual shape check.
func (c *Constant) Predict(features []float64) (Prediction, error) {
	if len(features) != len(c.features) {
		return Prediction{}, fmt.Errorf("%w: got %d features, artifact expects %d",
			ErrFeatureShapeMismatch, len(features), len(c.features))
	}
	return Prediction{Code: c.code, Score: c.score}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
