package schema

import (
	"strings"
	"testing"
)

func validRecord() FeatureRecord {
	return FeatureRecord{
		BMI:              28.5,
		Smoking:          "Yes",
		AlcoholDrinking:  "No",
		Stroke:           "No",
		PhysicalHealth:   2.0,
		MentalHealth:     2.0,
		DiffWalking:      "No",
		Sex:              "Male",
		AgeCategory:      "45-49",
		Race:             "White",
		Diabetic:         "No",
		PhysicalActivity: "Yes",
		GenHealth:        "Very good",
		SleepTime:        7.0,
		Asthma:           "No",
		KidneyDisease:    "No",
		SkinCancer:       "No",
	}
}

func TestFeatureRecord_Validate(t *testing.T) {
	t.Parallel()

	r := validRecord()
	if err := r.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
}

func TestFeatureRecord_Validate_MissingField(t *testing.T) {
	t.Parallel()

	mutations := map[string]func(*FeatureRecord){
		FieldSmoking:     func(r *FeatureRecord) { r.Smoking = "" },
		FieldSex:         func(r *FeatureRecord) { r.Sex = "" },
		FieldAgeCategory: func(r *FeatureRecord) { r.AgeCategory = "" },
		FieldRace:        func(r *FeatureRecord) { r.Race = "" },
		FieldGenHealth:   func(r *FeatureRecord) { r.GenHealth = "" },
		FieldSkinCancer:  func(r *FeatureRecord) { r.SkinCancer = "" },
	}

	for field, mutate := range mutations {
		r := validRecord()
		mutate(&r)
		err := r.Validate()
		if err == nil {
			t.Errorf("record with blank %s passed validation", field)
			continue
		}
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name field %s", err, field)
		}
	}
}

func TestFeatureRecord_Validate_Ranges(t *testing.T) {
	t.Parallel()

	r := validRecord()
	r.BMI = -1
	if err := r.Validate(); err == nil {
		t.Error("negative BMI passed validation")
	}

	r = validRecord()
	r.PhysicalHealth = 31
	if err := r.Validate(); err == nil {
		t.Error("PhysicalHealth above 30 passed validation")
	}

	r = validRecord()
	r.MentalHealth = -0.5
	if err := r.Validate(); err == nil {
		t.Error("negative MentalHealth passed validation")
	}

	r = validRecord()
	r.SleepTime = -1
	if err := r.Validate(); err == nil {
		t.Error("negative SleepTime passed validation")
	}
}

func TestRegistry_Immutable(t *testing.T) {
	t.Parallel()

	names := []string{"BMI", "Smoking", "Race_White"}
	reg := NewRegistry(names)

	// Mutating the source slice must not affect the registry.
	names[0] = "mutated"
	if reg.At(0) != "BMI" {
		t.Errorf("registry shares caller slice: At(0) = %q", reg.At(0))
	}

	// Mutating the returned copy must not affect the registry either.
	out := reg.Names()
	out[1] = "mutated"
	if reg.At(1) != "Smoking" {
		t.Errorf("registry shares returned slice: At(1) = %q", reg.At(1))
	}
}

func TestRegistry_Index(t *testing.T) {
	t.Parallel()

	reg := NewRegistry([]string{"a", "b", "c"})
	if reg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reg.Len())
	}
	if got := reg.Index("b"); got != 1 {
		t.Errorf("Index(b) = %d, want 1", got)
	}
	if got := reg.Index("missing"); got != -1 {
		t.Errorf("Index(missing) = %d, want -1", got)
	}
}

func TestRegistry_Empty(t *testing.T) {
	t.Parallel()

	var nilReg *Registry
	if nilReg.Len() != 0 {
		t.Errorf("nil registry Len() = %d, want 0", nilReg.Len())
	}
	if NewRegistry(nil).Len() != 0 {
		t.Error("empty registry should have zero length")
	}
}
