package ml

import (
	"fmt"
	"math"
)

// Prediction labels for the binary target class.
const (
	LabelPositive = "Heart Disease"
	LabelNegative = "No Heart Disease"
)

// Prediction is one model's verdict for a single record. Score carries the
// raw positive-class probability for metrics; Probability is the same value
// formatted for callers and persistence.
type Prediction struct {
	Model       string  `json:"model"`
	Label       string  `json:"prediction"`
	Probability string  `json:"probability"`
	Score       float64 `json:"-"`
}

// Entry pairs a model identifier with its trained classifier.
type Entry struct {
	ID         string
	Classifier Classifier
}

// Ensemble queries every registered model independently with the same
// scaled vector. Outputs are deliberately not combined: no voting, no
// averaging. Callers see the raw per-model disagreement.
type Ensemble struct {
	entries []Entry
}

// NewEnsemble fixes the registration order of the given entries. Repeated
// Predict calls iterate models in exactly this order so identical inputs
// produce byte-identical output ordering.
func NewEnsemble(entries []Entry) (*Ensemble, error) {
	if len(entries) == 0 {
		return nil, &ConfigurationError{Reason: "ensemble has no models"}
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.ID == "" || e.Classifier == nil {
			return nil, &ConfigurationError{Reason: "ensemble entry with empty id or nil classifier"}
		}
		if seen[e.ID] {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate model id %q", e.ID)}
		}
		seen[e.ID] = true
	}
	es := &Ensemble{entries: make([]Entry, len(entries))}
	copy(es.entries, entries)
	return es, nil
}

// ModelIDs returns the model identifiers in registration order.
func (e *Ensemble) ModelIDs() []string {
	ids := make([]string, len(e.entries))
	for i, entry := range e.entries {
		ids[i] = entry.ID
	}
	return ids
}

// Predict runs every model against the identical scaled vector and returns
// one prediction per model in registration order. The ensemble is
// fail-fast: any model error aborts the whole call and no partial result
// is returned.
func (e *Ensemble) Predict(scaled []float64) ([]Prediction, error) {
	preds := make([]Prediction, 0, len(e.entries))
	for _, entry := range e.entries {
		p, err := entry.Classifier.PredictProba(scaled)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", entry.ID, err)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("model %s: invalid probability %v", entry.ID, p)
		}

		label := LabelNegative
		if p > 0.5 {
			label = LabelPositive
		}
		preds = append(preds, Prediction{
			Model:       entry.ID,
			Label:       label,
			Probability: fmt.Sprintf("%.2f%%", p*100),
			Score:       p,
		})
	}
	return preds, nil
}
