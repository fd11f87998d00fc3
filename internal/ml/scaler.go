package ml

import (
	"fmt"
	"math"
)

// Scaler applies the per-column standardization fitted at training time:
// (x - mean) / scale. Parameters are fixed at construction; Transform is a
// pure numeric map with no failure modes beyond a dimension mismatch.
type Scaler struct {
	mean  []float64
	scale []float64
}

// NewScaler copies the fitted parameters. Both slices must have the same
// length; a zero scale entry is treated as 1 so constant columns pass
// through unscaled.
func NewScaler(mean, scale []float64) (*Scaler, error) {
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler: mean has %d entries, scale has %d", len(mean), len(scale))
	}
	if len(mean) == 0 {
		return nil, fmt.Errorf("scaler: no parameters")
	}
	s := &Scaler{
		mean:  make([]float64, len(mean)),
		scale: make([]float64, len(scale)),
	}
	copy(s.mean, mean)
	copy(s.scale, scale)
	for i, v := range s.scale {
		if v == 0 || math.IsNaN(v) {
			s.scale[i] = 1
		}
	}
	return s, nil
}

// Len returns the number of columns the scaler was fitted on.
func (s *Scaler) Len() int { return len(s.mean) }

// Transform standardizes an aligned vector. The input is not modified.
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.mean) {
		return nil, &DimensionError{Want: len(s.mean), Got: len(vec)}
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}
