package ml

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClassifier always returns the same probability.
type fixedClassifier struct {
	p   float64
	err error
}

func (f *fixedClassifier) PredictProba([]float64) (float64, error) {
	return f.p, f.err
}

func TestEnsemble_PredictOrderAndLabels(t *testing.T) {
	t.Parallel()

	e, err := NewEnsemble([]Entry{
		{ID: "Logistic_Regression", Classifier: &fixedClassifier{p: 0.7342}},
		{ID: "Random_Forest", Classifier: &fixedClassifier{p: 0.12}},
	})
	require.NoError(t, err)

	preds, err := e.Predict([]float64{0})
	require.NoError(t, err)
	require.Len(t, preds, 2)

	assert.Equal(t, "Logistic_Regression", preds[0].Model)
	assert.Equal(t, LabelPositive, preds[0].Label)
	assert.Equal(t, "73.42%", preds[0].Probability)

	assert.Equal(t, "Random_Forest", preds[1].Model)
	assert.Equal(t, LabelNegative, preds[1].Label)
	assert.Equal(t, "12.00%", preds[1].Probability)
}

func TestEnsemble_ProbabilityFormat(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^\d+\.\d{2}%$`)
	for _, p := range []float64{0, 0.005, 0.5, 0.73419, 0.999999, 1} {
		e, err := NewEnsemble([]Entry{{ID: "m", Classifier: &fixedClassifier{p: p}}})
		require.NoError(t, err)

		preds, err := e.Predict(nil)
		require.NoError(t, err)
		assert.Regexp(t, pattern, preds[0].Probability, "p=%v", p)
		assert.InDelta(t, p, preds[0].Score, 1e-12)
	}
}

// Probability exactly 0.5 is not a positive-class win.
func TestEnsemble_TieIsNegative(t *testing.T) {
	t.Parallel()

	e, err := NewEnsemble([]Entry{{ID: "m", Classifier: &fixedClassifier{p: 0.5}}})
	require.NoError(t, err)

	preds, err := e.Predict(nil)
	require.NoError(t, err)
	assert.Equal(t, LabelNegative, preds[0].Label)
}

// The ensemble is fail-fast: one failing model aborts the whole call and
// no partial result escapes.
func TestEnsemble_FailFast(t *testing.T) {
	t.Parallel()

	e, err := NewEnsemble([]Entry{
		{ID: "good", Classifier: &fixedClassifier{p: 0.9}},
		{ID: "bad", Classifier: &fixedClassifier{err: fmt.Errorf("boom")}},
	})
	require.NoError(t, err)

	preds, err := e.Predict(nil)
	require.Error(t, err)
	assert.Nil(t, preds)
	assert.Contains(t, err.Error(), "bad")
}

func TestEnsemble_InvalidProbability(t *testing.T) {
	t.Parallel()

	e, err := NewEnsemble([]Entry{{ID: "m", Classifier: &fixedClassifier{p: 1.5}}})
	require.NoError(t, err)

	_, err = e.Predict(nil)
	require.Error(t, err)
}

func TestEnsemble_Deterministic(t *testing.T) {
	t.Parallel()

	e, err := NewEnsemble([]Entry{
		{ID: "a", Classifier: &fixedClassifier{p: 0.3}},
		{ID: "b", Classifier: &fixedClassifier{p: 0.8}},
	})
	require.NoError(t, err)

	first, err := e.Predict([]float64{1, 2})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := e.Predict([]float64{1, 2})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNewEnsemble_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewEnsemble(nil)
	assert.Error(t, err, "empty ensemble accepted")

	_, err = NewEnsemble([]Entry{
		{ID: "dup", Classifier: &fixedClassifier{}},
		{ID: "dup", Classifier: &fixedClassifier{}},
	})
	assert.Error(t, err, "duplicate model id accepted")

	_, err = NewEnsemble([]Entry{{ID: "", Classifier: &fixedClassifier{}}})
	assert.Error(t, err, "blank model id accepted")
}

func TestEnsemble_ModelIDs(t *testing.T) {
	t.Parallel()

	e, err := NewEnsemble([]Entry{
		{ID: "first", Classifier: &fixedClassifier{}},
		{ID: "second", Classifier: &fixedClassifier{}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, e.ModelIDs())
}
