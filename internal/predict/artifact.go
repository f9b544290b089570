// Package predict scores study sessions with a regression forest
// trained offline and persisted as a JSON artifact.
package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrModelUnavailable reports a missing or corrupt model artifact.
var ErrModelUnavailable = errors.New("model artifact unavailable")

// FeatureNames fixes the inference feature order. Artifacts trained
// against a different feature set are rejected at load time.
var FeatureNames = []string{"study_hours", "sleep_hours", "break_frequency", "concentration_level"}

// Node is one decision node in a flattened tree. Feature -1 marks a
// leaf carrying the prediction in Value; internal nodes route to the
// Left child when the feature value is <= Threshold.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) Predict(features []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if features[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Artifact is the persisted model: an ensemble of regression trees
// whose predictions are averaged. The output is deliberately not
// clamped; training targets are bounded but inference is raw.
type Artifact struct {
	SchemaVersion int      `json:"schema_version"`
	Features      []string `json:"features"`
	Trees         []Tree   `json:"trees"`
}

func (a *Artifact) Predict(features []float64) float64 {
	sum := 0.0
	for i := range a.Trees {
		sum += a.Trees[i].Predict(features)
	}
	return sum / float64(len(a.Trees))
}

// Load reads and validates an artifact. All failures are reported as
// ErrModelUnavailable so callers can treat them uniformly.
func Load(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrModelUnavailable, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if len(a.Trees) == 0 {
		return errors.New("no trees")
	}
	if len(a.Features) != len(FeatureNames) {
		return fmt.Errorf("expected %d features, got %d", len(FeatureNames), len(a.Features))
	}
	for ti := range a.Trees {
		nodes := a.Trees[ti].Nodes
		if len(nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range nodes {
			if n.Feature >= len(a.Features) {
				return fmt.Errorf("tree %d node %d references feature %d", ti, ni, n.Feature)
			}
			if n.Feature >= 0 {
				if n.Left <= ni || n.Left >= len(nodes) || n.Right <= ni || n.Right >= len(nodes) {
					return fmt.Errorf("tree %d node %d has invalid children", ti, ni)
				}
			}
		}
	}
	return nil
}

// Save writes the artifact atomically via a temp file rename.
func (a *Artifact) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return err
	}
	return nil
}
