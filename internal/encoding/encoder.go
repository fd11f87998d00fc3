// Package encoding converts raw categorical health attributes into the
// numeric form the models were trained on. The encoder tables are fit once
// at training time, exported with the model artifacts, and applied here as
// static lookups. The encoder is never refit on inference data: a one-row
// refit cannot reproduce the training mapping and can silently invert the
// 0/1 assignments.
package encoding

import (
	"fmt"

	"heartpredict/internal/schema"
)

// EncodedRecord is the sparse numeric form of a feature record. One-hot
// expansion means its column set varies per record; the aligner projects it
// onto the fixed registry order downstream.
type EncodedRecord map[string]float64

// EncodingError reports a categorical value outside the vocabulary seen at
// training time. Nominal fields never raise it (unseen categories simply
// produce no indicator column); binary and ordinal fields are strict.
type EncodingError struct {
	Field string
	Value string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding: unknown value %q for field %s", e.Value, e.Field)
}

// Tables is the serialized form of the fitted encoder set, exported at
// training time alongside the models.
type Tables struct {
	// Binary maps each binary field to its token-to-code table,
	// e.g. {"Smoking": {"No": 0, "Yes": 1}}.
	Binary map[string]map[string]float64 `json:"binary"`
	// Ordinal maps each ordinal field to its ranked category list; a
	// category's rank is its position in the list.
	Ordinal map[string][]string `json:"ordinal"`
}

// EncoderSet applies the fitted binary, ordinal and one-hot encodings.
// It is read-only after construction and safe for concurrent use.
type EncoderSet struct {
	binary  map[string]map[string]float64
	ordinal map[string]map[string]float64
}

// New builds an encoder set from exported tables. Every binary and ordinal
// field of the schema must have a table entry.
func New(t Tables) (*EncoderSet, error) {
	binaryFields := []string{
		schema.FieldSmoking, schema.FieldAlcoholDrinking, schema.FieldStroke,
		schema.FieldDiffWalking, schema.FieldSex, schema.FieldPhysicalActivity,
		schema.FieldAsthma, schema.FieldKidneyDisease, schema.FieldSkinCancer,
	}
	for _, f := range binaryFields {
		if len(t.Binary[f]) == 0 {
			return nil, fmt.Errorf("encoding: missing binary table for field %s", f)
		}
	}
	for _, f := range []string{schema.FieldGenHealth, schema.FieldAgeCategory} {
		if len(t.Ordinal[f]) == 0 {
			return nil, fmt.Errorf("encoding: missing ordinal table for field %s", f)
		}
	}

	es := &EncoderSet{
		binary:  make(map[string]map[string]float64, len(t.Binary)),
		ordinal: make(map[string]map[string]float64, len(t.Ordinal)),
	}
	for field, table := range t.Binary {
		m := make(map[string]float64, len(table))
		for token, code := range table {
			m[token] = code
		}
		es.binary[field] = m
	}
	for field, ranked := range t.Ordinal {
		m := make(map[string]float64, len(ranked))
		for rank, category := range ranked {
			m[category] = float64(rank)
		}
		es.ordinal[field] = m
	}
	return es, nil
}

// Encode maps a raw record to its sparse numeric form. It is a pure
// function of the record and the fitted tables: encoding the same record
// twice yields identical results, and no encoder state is mutated.
func (es *EncoderSet) Encode(r schema.FeatureRecord) (EncodedRecord, error) {
	enc := make(EncodedRecord, 17)

	// Continuous fields pass through under their own names.
	enc[schema.FieldBMI] = r.BMI
	enc[schema.FieldPhysicalHealth] = r.PhysicalHealth
	enc[schema.FieldMentalHealth] = r.MentalHealth
	enc[schema.FieldSleepTime] = r.SleepTime

	binary := map[string]string{
		schema.FieldSmoking:          r.Smoking,
		schema.FieldAlcoholDrinking:  r.AlcoholDrinking,
		schema.FieldStroke:           r.Stroke,
		schema.FieldDiffWalking:      r.DiffWalking,
		schema.FieldSex:              r.Sex,
		schema.FieldPhysicalActivity: r.PhysicalActivity,
		schema.FieldAsthma:           r.Asthma,
		schema.FieldKidneyDisease:    r.KidneyDisease,
		schema.FieldSkinCancer:       r.SkinCancer,
	}
	for field, token := range binary {
		code, ok := es.binary[field][token]
		if !ok {
			return nil, &EncodingError{Field: field, Value: token}
		}
		enc[field] = code
	}

	ordinal := map[string]string{
		schema.FieldGenHealth:   r.GenHealth,
		schema.FieldAgeCategory: r.AgeCategory,
	}
	for field, category := range ordinal {
		rank, ok := es.ordinal[field][category]
		if !ok {
			return nil, &EncodingError{Field: field, Value: category}
		}
		enc[field] = rank
	}

	// Nominal fields expand to one indicator column per observed value.
	// Only columns for values present in this record are created; the
	// aligner zero-fills the rest against the registry.
	enc[schema.FieldRace+"_"+r.Race] = 1
	enc[schema.FieldDiabetic+"_"+r.Diabetic] = 1

	return enc, nil
}

// DefaultTables returns the encoder tables produced by the reference
// training run: Yes/No and Female/Male assigned alphabetically, GenHealth
// on its five-level scale and AgeCategory on its thirteen buckets.
func DefaultTables() Tables {
	yesNo := map[string]float64{"No": 0, "Yes": 1}
	binary := map[string]map[string]float64{
		schema.FieldSmoking:          yesNo,
		schema.FieldAlcoholDrinking:  yesNo,
		schema.FieldStroke:           yesNo,
		schema.FieldDiffWalking:      yesNo,
		schema.FieldSex:              {"Female": 0, "Male": 1},
		schema.FieldPhysicalActivity: yesNo,
		schema.FieldAsthma:           yesNo,
		schema.FieldKidneyDisease:    yesNo,
		schema.FieldSkinCancer:       yesNo,
	}
	ordinal := map[string][]string{
		schema.FieldGenHealth: {"Poor", "Fair", "Good", "Very good", "Excellent"},
		schema.FieldAgeCategory: {
			"18-24", "25-29", "30-34", "35-39", "40-44", "45-49",
			"50-54", "55-59", "60-64", "65-69", "70-74", "75-79",
			"80 or older",
		},
	}
	return Tables{Binary: binary, Ordinal: ordinal}
}
