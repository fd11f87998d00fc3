package ml

import (
	"fmt"
	"math"
)

// Classifier evaluates one trained binary classifier against a scaled,
// aligned feature vector and returns the positive-class probability.
// Implementations are read-only after construction and safe for
// concurrent use.
type Classifier interface {
	PredictProba(features []float64) (float64, error)
}

// LogisticRegression holds the exported coefficients of a fitted logistic
// regression. The positive-class probability is sigmoid(intercept + w·x).
type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (m *LogisticRegression) PredictProba(features []float64) (float64, error) {
	if len(features) != len(m.Coef) {
		return 0, &DimensionError{Want: len(m.Coef), Got: len(features)}
	}
	z := m.Intercept
	for i, w := range m.Coef {
		z += w * features[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Tree is one decision tree in array form, as exported from the trained
// forest: node i branches left when features[Feature[i]] <= Threshold[i].
// A node with ChildrenLeft[i] == -1 is a leaf; Value[i] holds the training
// sample counts per class at that leaf.
type Tree struct {
	ChildrenLeft  []int        `json:"children_left"`
	ChildrenRight []int        `json:"children_right"`
	Feature       []int        `json:"feature"`
	Threshold     []float64    `json:"threshold"`
	Value         [][2]float64 `json:"value"`
}

func (t *Tree) proba(features []float64) (float64, error) {
	node := 0
	// A well-formed tree terminates well before len(ChildrenLeft) hops;
	// the bound guards against cyclic artifacts.
	for step := 0; step <= len(t.ChildrenLeft); step++ {
		if node < 0 || node >= len(t.ChildrenLeft) {
			return 0, fmt.Errorf("tree: node index %d out of range", node)
		}
		if t.ChildrenLeft[node] == -1 {
			total := t.Value[node][0] + t.Value[node][1]
			if total == 0 {
				return 0, fmt.Errorf("tree: empty leaf %d", node)
			}
			return t.Value[node][1] / total, nil
		}
		f := t.Feature[node]
		if f < 0 || f >= len(features) {
			return 0, &DimensionError{Want: f + 1, Got: len(features)}
		}
		if features[f] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return 0, fmt.Errorf("tree: traversal did not reach a leaf")
}

// RandomForest averages the per-tree positive-class probabilities of a
// fitted forest, matching the exporting library's predict_proba semantics.
type RandomForest struct {
	NumFeatures int    `json:"n_features"`
	Trees       []Tree `json:"trees"`
}

func (m *RandomForest) PredictProba(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("random forest: no trees")
	}
	if len(features) != m.NumFeatures {
		return 0, &DimensionError{Want: m.NumFeatures, Got: len(features)}
	}
	sum := 0.0
	for i := range m.Trees {
		p, err := m.Trees[i].proba(features)
		if err != nil {
			return 0, fmt.Errorf("random forest tree %d: %w", i, err)
		}
		sum += p
	}
	return sum / float64(len(m.Trees)), nil
}
