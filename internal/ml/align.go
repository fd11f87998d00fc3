package ml

import (
	"heartpredict/internal/encoding"
	"heartpredict/internal/schema"
)

// Align projects a sparse encoded record onto the registry's exact column
// set. For every registry name, in order: copy the encoded value if
// present, else zero-fill (a one-hot category absent from this record).
// Columns in the encoded record that the registry does not know are
// dropped. The output length always equals the registry length; every
// downstream model assumes this unconditionally.
func Align(enc encoding.EncodedRecord, reg *schema.Registry) ([]float64, error) {
	if reg.Len() == 0 {
		return nil, &ConfigurationError{Reason: "feature registry is empty"}
	}

	vec := make([]float64, reg.Len())
	for i := 0; i < reg.Len(); i++ {
		if v, ok := enc[reg.At(i)]; ok {
			vec[i] = v
		}
	}
	return vec, nil
}
