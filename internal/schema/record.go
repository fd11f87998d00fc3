// Package schema defines the raw health attribute record accepted by the
// prediction pipeline and the frozen feature-name registry produced at
// training time. The registry is the single source of truth for the column
// order every model expects; it is loaded once at process start and never
// mutated afterwards.
package schema

import "fmt"

// Field names as they appear in the training dataset and in the frozen
// feature-name list. One-hot columns derived from nominal fields use the
// "<field>_<value>" convention (e.g. "Race_White").
const (
	FieldBMI              = "BMI"
	FieldSmoking          = "Smoking"
	FieldAlcoholDrinking  = "AlcoholDrinking"
	FieldStroke           = "Stroke"
	FieldPhysicalHealth   = "PhysicalHealth"
	FieldMentalHealth     = "MentalHealth"
	FieldDiffWalking      = "DiffWalking"
	FieldSex              = "Sex"
	FieldAgeCategory      = "AgeCategory"
	FieldRace             = "Race"
	FieldDiabetic         = "Diabetic"
	FieldPhysicalActivity = "PhysicalActivity"
	FieldGenHealth        = "GenHealth"
	FieldSleepTime        = "SleepTime"
	FieldAsthma           = "Asthma"
	FieldKidneyDisease    = "KidneyDisease"
	FieldSkinCancer       = "SkinCancer"
)

// FeatureRecord holds one subject's raw attributes before encoding.
// All 17 fields must be populated; absent values are a hard input error on
// the serving path, never silently defaulted.
type FeatureRecord struct {
	BMI              float64 `json:"BMI"`
	Smoking          string  `json:"Smoking"`
	AlcoholDrinking  string  `json:"AlcoholDrinking"`
	Stroke           string  `json:"Stroke"`
	PhysicalHealth   float64 `json:"PhysicalHealth"`
	MentalHealth     float64 `json:"MentalHealth"`
	DiffWalking      string  `json:"DiffWalking"`
	Sex              string  `json:"Sex"`
	AgeCategory      string  `json:"AgeCategory"`
	Race             string  `json:"Race"`
	Diabetic         string  `json:"Diabetic"`
	PhysicalActivity string  `json:"PhysicalActivity"`
	GenHealth        string  `json:"GenHealth"`
	SleepTime        float64 `json:"SleepTime"`
	Asthma           string  `json:"Asthma"`
	KidneyDisease    string  `json:"KidneyDisease"`
	SkinCancer       string  `json:"SkinCancer"`
}

// Validate checks that every field is present and within its documented
// domain. Categorical values are only checked for presence here; whether a
// token is a known category is the encoder's concern.
func (r *FeatureRecord) Validate() error {
	categorical := map[string]string{
		FieldSmoking:          r.Smoking,
		FieldAlcoholDrinking:  r.AlcoholDrinking,
		FieldStroke:           r.Stroke,
		FieldDiffWalking:      r.DiffWalking,
		FieldSex:              r.Sex,
		FieldAgeCategory:      r.AgeCategory,
		FieldRace:             r.Race,
		FieldDiabetic:         r.Diabetic,
		FieldPhysicalActivity: r.PhysicalActivity,
		FieldGenHealth:        r.GenHealth,
		FieldAsthma:           r.Asthma,
		FieldKidneyDisease:    r.KidneyDisease,
		FieldSkinCancer:       r.SkinCancer,
	}
	// Deterministic order so the reported field is stable across calls.
	order := []string{
		FieldSmoking, FieldAlcoholDrinking, FieldStroke, FieldDiffWalking,
		FieldSex, FieldAgeCategory, FieldRace, FieldDiabetic,
		FieldPhysicalActivity, FieldGenHealth, FieldAsthma,
		FieldKidneyDisease, FieldSkinCancer,
	}
	for _, name := range order {
		if categorical[name] == "" {
			return fmt.Errorf("feature record: missing field %s", name)
		}
	}

	if r.BMI < 0 {
		return fmt.Errorf("feature record: BMI must be >= 0, got %v", r.BMI)
	}
	if r.PhysicalHealth < 0 || r.PhysicalHealth > 30 {
		return fmt.Errorf("feature record: PhysicalHealth must be in [0,30], got %v", r.PhysicalHealth)
	}
	if r.MentalHealth < 0 || r.MentalHealth > 30 {
		return fmt.Errorf("feature record: MentalHealth must be in [0,30], got %v", r.MentalHealth)
	}
	if r.SleepTime < 0 {
		return fmt.Errorf("feature record: SleepTime must be >= 0, got %v", r.SleepTime)
	}
	return nil
}
