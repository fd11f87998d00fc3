package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"heartpredict/internal/encoding"
	"heartpredict/internal/schema"
)

// Artifact file layout, mirroring the training export:
//
//	<dir>/encoders.json            fitted encoder tables
//	<dir>/scaler.json              fitted standardization parameters
//	<dir>/<model>/model.json       classifier parameters
//	<dir>/<model>/config.json      frozen feature names + training metadata
const (
	encodersFile    = "encoders.json"
	scalerFile      = "scaler.json"
	modelFile       = "model.json"
	modelConfigFile = "config.json"
)

// Classifier type tags in model.json.
const (
	modelTypeLogisticRegression = "logistic_regression"
	modelTypeRandomForest       = "random_forest"
)

// ModelInfo is the training metadata carried alongside each classifier.
type ModelInfo struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	TrainedAt time.Time `json:"trained_at"`
	Accuracy  float64   `json:"accuracy"`
	Features  int       `json:"features"`
}

// Bundle is the immutable artifact set the serving process loads once at
// start: the frozen feature registry, the fitted encoders and scaler, and
// the model ensemble. It is shared by reference across request handlers
// and never mutated after construction.
type Bundle struct {
	Registry *schema.Registry
	Encoders *encoding.EncoderSet
	Scaler   *Scaler
	Ensemble *Ensemble
	Info     []ModelInfo
}

type scalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type modelConfig struct {
	FeatureNames []string  `json:"feature_names"`
	TrainedAt    time.Time `json:"trained_at"`
	Accuracy     float64   `json:"accuracy"`
}

type modelParams struct {
	Type string `json:"type"`

	// logistic_regression
	Coef      []float64 `json:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty"`

	// random_forest
	NumFeatures int    `json:"n_features,omitempty"`
	Trees       []Tree `json:"trees,omitempty"`
}

// LoadBundle reads the artifact directory and assembles the bundle.
// modelIDs fixes the ensemble registration order. Every model must carry
// the identical frozen feature-name list, and the scaler width must match
// it; any disagreement is a ConfigurationError, fatal at startup.
func LoadBundle(dir string, modelIDs []string) (*Bundle, error) {
	if len(modelIDs) == 0 {
		return nil, &ConfigurationError{Reason: "no model ids configured"}
	}

	var tables encoding.Tables
	if err := decodeFile(filepath.Join(dir, encodersFile), &tables); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("load encoders: %v", err)}
	}
	encoders, err := encoding.New(tables)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	var sp scalerParams
	if err := decodeFile(filepath.Join(dir, scalerFile), &sp); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("load scaler: %v", err)}
	}
	scaler, err := NewScaler(sp.Mean, sp.Scale)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	var (
		registry *schema.Registry
		entries  []Entry
		info     []ModelInfo
	)
	for _, id := range modelIDs {
		modelDir := filepath.Join(dir, id)

		var cfg modelConfig
		if err := decodeFile(filepath.Join(modelDir, modelConfigFile), &cfg); err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("load %s config: %v", id, err)}
		}
		if len(cfg.FeatureNames) == 0 {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("model %s has no feature names", id)}
		}
		if registry == nil {
			registry = schema.NewRegistry(cfg.FeatureNames)
		} else if !sameNames(registry, cfg.FeatureNames) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("model %s feature names disagree with ensemble", id)}
		}

		var mp modelParams
		if err := decodeFile(filepath.Join(modelDir, modelFile), &mp); err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("load %s model: %v", id, err)}
		}
		clf, err := buildClassifier(id, mp, registry.Len())
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{ID: id, Classifier: clf})
		info = append(info, ModelInfo{
			ID:        id,
			Type:      mp.Type,
			TrainedAt: cfg.TrainedAt,
			Accuracy:  cfg.Accuracy,
			Features:  len(cfg.FeatureNames),
		})
	}

	if scaler.Len() != registry.Len() {
		return nil, &ConfigurationError{Reason: fmt.Sprintf(
			"scaler fitted on %d columns, registry has %d", scaler.Len(), registry.Len())}
	}

	ensemble, err := NewEnsemble(entries)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("dir", dir).
		Strs("models", modelIDs).
		Int("features", registry.Len()).
		Msg("model artifacts loaded")

	return &Bundle{
		Registry: registry,
		Encoders: encoders,
		Scaler:   scaler,
		Ensemble: ensemble,
		Info:     info,
	}, nil
}

// NewBundle assembles a bundle from already-constructed parts, verifying
// the same width agreement LoadBundle enforces. Used by tests and by any
// embedder that carries artifacts in memory.
func NewBundle(reg *schema.Registry, enc *encoding.EncoderSet, scaler *Scaler, ensemble *Ensemble, info []ModelInfo) (*Bundle, error) {
	if reg.Len() == 0 {
		return nil, &ConfigurationError{Reason: "feature registry is empty"}
	}
	if enc == nil || scaler == nil || ensemble == nil {
		return nil, &ConfigurationError{Reason: "incomplete artifact bundle"}
	}
	if scaler.Len() != reg.Len() {
		return nil, &ConfigurationError{Reason: fmt.Sprintf(
			"scaler fitted on %d columns, registry has %d", scaler.Len(), reg.Len())}
	}
	return &Bundle{Registry: reg, Encoders: enc, Scaler: scaler, Ensemble: ensemble, Info: info}, nil
}

func buildClassifier(id string, mp modelParams, width int) (Classifier, error) {
	switch mp.Type {
	case modelTypeLogisticRegression:
		if len(mp.Coef) != width {
			return nil, &ConfigurationError{Reason: fmt.Sprintf(
				"model %s has %d coefficients for %d features", id, len(mp.Coef), width)}
		}
		return &LogisticRegression{Coef: mp.Coef, Intercept: mp.Intercept}, nil
	case modelTypeRandomForest:
		if mp.NumFeatures != width {
			return nil, &ConfigurationError{Reason: fmt.Sprintf(
				"model %s fitted on %d features, registry has %d", id, mp.NumFeatures, width)}
		}
		if len(mp.Trees) == 0 {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("model %s has no trees", id)}
		}
		return &RandomForest{NumFeatures: mp.NumFeatures, Trees: mp.Trees}, nil
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("model %s has unknown type %q", id, mp.Type)}
	}
}

func sameNames(reg *schema.Registry, names []string) bool {
	if reg.Len() != len(names) {
		return false
	}
	for i, n := range names {
		if reg.At(i) != n {
			return false
		}
	}
	return true
}

func decodeFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
