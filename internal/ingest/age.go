package ingest

import (
	"strings"
	"time"
)

// defaultAgeCategory is used when the birth date is unparsable or yields
// an age below 18.
const defaultAgeCategory = "18-24"

type ageBucket struct {
	min, max int
	category string
}

// Bucket boundaries match the training dataset's AgeCategory scale.
var ageBuckets = []ageBucket{
	{18, 24, "18-24"},
	{25, 29, "25-29"},
	{30, 34, "30-34"},
	{35, 39, "35-39"},
	{40, 44, "40-44"},
	{45, 49, "45-49"},
	{50, 54, "50-54"},
	{55, 59, "55-59"},
	{60, 64, "60-64"},
	{65, 69, "65-69"},
	{70, 74, "70-74"},
	{75, 79, "75-79"},
}

// AgeCategoryAt derives the training-scale age bucket from an ISO-8601
// birth date, evaluated at now. It is a pure function with no network
// dependency. Ages of 80 and above map to "80 or older"; an unparsable
// date or an age below 18 falls back to the default bucket.
func AgeCategoryAt(birthDate string, now time.Time) string {
	birth, err := parseBirthDate(birthDate)
	if err != nil {
		return defaultAgeCategory
	}

	age := now.Year() - birth.Year()
	// Birthday has not happened yet this year.
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}

	if age >= 80 {
		return "80 or older"
	}
	for _, b := range ageBuckets {
		if age >= b.min && age <= b.max {
			return b.category
		}
	}
	return defaultAgeCategory
}

func parseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
