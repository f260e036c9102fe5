package risk

// Gradient-boosted tree scoring. The model artifact is a JSON export of a
// trained booster: the feature column order, the standardization parameters
// fit during training, and the ensemble of regression trees. Scoring sums
// the leaf values over all trees on the standardized vector and squashes the
// margin through a sigmoid.

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"voice-screening/utils"
)

// ErrModelUnavailable reports a missing or unreadable model artifact. This is
// a deployment condition, not a data problem, and callers surface it as such.
var ErrModelUnavailable = errors.New("risk model artifact unavailable")

type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

type tree struct {
	Nodes []treeNode `json:"nodes"`
}

// score walks the tree from the root. Values below the threshold go left.
func (t *tree) score(features []float64) float64 {
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value
		}
		if features[node.Feature] < node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

type scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *scaler) transform(features []float64) []float64 {
	scaled := make([]float64, len(features))
	for i, v := range features {
		div := s.Scale[i]
		if div == 0 {
			div = 1
		}
		scaled[i] = (v - s.Mean[i]) / div
	}
	return scaled
}

// Model is an immutable, loaded risk classifier.
type Model struct {
	Version   string   `json:"version"`
	Features  []string `json:"features"`
	Scaler    scaler   `json:"scaler"`
	BaseScore float64  `json:"base_score"`
	Trees     []tree   `json:"trees"`
}

// NewModelFromFile loads and validates a model artifact. When the primary
// file is missing it attempts the bundled `.example.json` next to it,
// e.g. "parkinson_model.json" -> "parkinson_model.example.json".
func NewModelFromFile(path string) (*Model, error) {
	resolvedPath := filepath.Clean(path)
	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		ext := filepath.Ext(resolvedPath)
		base := strings.TrimSuffix(resolvedPath, ext)
		fallbackPath := base + ".example" + ext
		data, err = os.ReadFile(fallbackPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, resolvedPath)
		}
		utils.GetLogger().Warn("falling back to example risk model", "path", fallbackPath)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: unable to parse artifact: %v", ErrModelUnavailable, err)
	}

	dims := len(model.Features)
	if dims == 0 {
		return nil, fmt.Errorf("%w: artifact lists no features", ErrModelUnavailable)
	}
	if len(model.Scaler.Mean) != dims || len(model.Scaler.Scale) != dims {
		return nil, fmt.Errorf("%w: scaler dimensions do not match feature list", ErrModelUnavailable)
	}
	if len(model.Trees) == 0 {
		return nil, fmt.Errorf("%w: artifact contains no trees", ErrModelUnavailable)
	}
	for ti, t := range model.Trees {
		if len(t.Nodes) == 0 {
			return nil, fmt.Errorf("%w: tree %d is empty", ErrModelUnavailable, ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= dims {
				return nil, fmt.Errorf("%w: tree %d node %d references feature %d", ErrModelUnavailable, ti, ni, n.Feature)
			}
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return nil, fmt.Errorf("%w: tree %d node %d has an out-of-range child", ErrModelUnavailable, ti, ni)
			}
		}
	}

	return &model, nil
}

// Probability returns the positive-class posterior for a raw feature vector
// in the model's column order.
func (m *Model) Probability(features []float64) float64 {
	scaled := m.Scaler.transform(features)
	margin := m.BaseScore
	for i := range m.Trees {
		margin += m.Trees[i].score(scaled)
	}
	return 1.0 / (1.0 + math.Exp(-margin))
}
