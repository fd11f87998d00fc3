// Package ingest assembles a subject's raw feature record from the
// upstream health-data API: the medical record, the user profile, the BMI
// reading and the rolling 30-day good-health-day counts. All upstream
// reads must succeed before encoding begins; a single missing value
// invalidates the whole record.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"heartpredict/internal/schema"
)

// IngestionError reports a failed or incomplete upstream fetch. The
// request aborts before encoding and is never retried at the pipeline
// level.
type IngestionError struct {
	Resource string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion: fetch %s: %v", e.Resource, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// Client fetches health data over HTTP. Every call carries the configured
// timeout; a timeout is reported as an IngestionError, not a crash.
type Client struct {
	base string
	rest *resty.Client
}

// NewClient creates a health-data client for the given base URL.
func NewClient(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	return &Client{base: base, rest: r}
}

// medicalRecord mirrors the upstream medical-record document. SleepTime is
// a pointer so an absent field can be told apart from a zero reading.
type medicalRecord struct {
	Smoking          bool     `json:"smoking"`
	AlcoholDrinking  bool     `json:"alcoholDrinking"`
	Stroke           bool     `json:"stroke"`
	DiffWalking      bool     `json:"diffWalking"`
	Race             string   `json:"race"`
	Diabetic         bool     `json:"diabetic"`
	PhysicalActivity bool     `json:"physicalActivity"`
	GenHealth        string   `json:"genHealth"`
	SleepTime        *float64 `json:"sleepTime"`
	Asthma           bool     `json:"asthma"`
	KidneyDisease    bool     `json:"kidneyDisease"`
	SkinCancer       bool     `json:"skinCancer"`
}

type userProfile struct {
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
}

type bmiReading struct {
	BMI float64 `json:"bmi"`
}

func (c *Client) medicalRecord(ctx context.Context, recordID string) (*medicalRecord, error) {
	var rec medicalRecord
	if err := c.getJSON(ctx, fmt.Sprintf("%s/medical/%s", c.base, recordID), &rec); err != nil {
		return nil, &IngestionError{Resource: "medical record", Err: err}
	}
	return &rec, nil
}

func (c *Client) user(ctx context.Context, userID string) (*userProfile, error) {
	var u userProfile
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s", c.base, userID), &u); err != nil {
		return nil, &IngestionError{Resource: "user profile", Err: err}
	}
	return &u, nil
}

func (c *Client) bmi(ctx context.Context, userID string) (float64, error) {
	var b bmiReading
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s/bmi", c.base, userID), &b); err != nil {
		return 0, &IngestionError{Resource: "bmi", Err: err}
	}
	return b.BMI, nil
}

func (c *Client) goodPhysicalDays(ctx context.Context) (int, error) {
	var days int
	url := c.base + "/daily-check/physical-health/good-days/last-30-days"
	if err := c.getJSON(ctx, url, &days); err != nil {
		return 0, &IngestionError{Resource: "physical good days", Err: err}
	}
	return days, nil
}

func (c *Client) goodMentalDays(ctx context.Context) (int, error) {
	var days int
	url := c.base + "/daily-check/mental-health/good-days/last-30-days"
	if err := c.getJSON(ctx, url, &days); err != nil {
		return 0, &IngestionError{Resource: "mental good days", Err: err}
	}
	return days, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(out).
		Get(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// FetchFeatureRecord gathers all upstream data for a subject and assembles
// the raw feature record. The five reads are independent and issued
// concurrently; the first failure wins and the whole fetch aborts.
func (c *Client) FetchFeatureRecord(ctx context.Context, userID, recordID string) (*schema.FeatureRecord, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error

		medical      *medicalRecord
		user         *userProfile
		bmi          float64
		physicalDays int
		mentalDays   int
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		rec, err := c.medicalRecord(ctx, recordID)
		if err != nil {
			fail(err)
			return
		}
		medical = rec
	}()
	go func() {
		defer wg.Done()
		u, err := c.user(ctx, userID)
		if err != nil {
			fail(err)
			return
		}
		user = u
	}()
	go func() {
		defer wg.Done()
		v, err := c.bmi(ctx, userID)
		if err != nil {
			fail(err)
			return
		}
		bmi = v
	}()
	go func() {
		defer wg.Done()
		d, err := c.goodPhysicalDays(ctx)
		if err != nil {
			fail(err)
			return
		}
		physicalDays = d
	}()
	go func() {
		defer wg.Done()
		d, err := c.goodMentalDays(ctx)
		if err != nil {
			fail(err)
			return
		}
		mentalDays = d
	}()
	wg.Wait()

	if firstErr != nil {
		log.Warn().Err(firstErr).Str("user_id", userID).Str("record_id", recordID).
			Msg("upstream fetch failed")
		return nil, firstErr
	}

	rec := convert(medical, user, bmi, physicalDays, mentalDays)
	if err := rec.Validate(); err != nil {
		return nil, &IngestionError{Resource: "feature record", Err: err}
	}
	return rec, nil
}

// convert maps upstream documents onto the training schema. Fields the
// upstream may omit take the dataset's modal values, matching the original
// ingestion policy; the assembled record is still validated before the
// core sees it.
func convert(m *medicalRecord, u *userProfile, bmi float64, physicalDays, mentalDays int) *schema.FeatureRecord {
	sleep := 7.0
	if m.SleepTime != nil {
		sleep = *m.SleepTime
	}
	race := m.Race
	if race == "" {
		race = "White"
	}
	genHealth := m.GenHealth
	if genHealth == "" {
		genHealth = "Very good"
	}
	sex := u.Gender
	if sex == "" {
		sex = "Male"
	}

	return &schema.FeatureRecord{
		BMI:              bmi,
		Smoking:          yesNo(m.Smoking),
		AlcoholDrinking:  yesNo(m.AlcoholDrinking),
		Stroke:           yesNo(m.Stroke),
		PhysicalHealth:   float64(physicalDays),
		MentalHealth:     float64(mentalDays),
		DiffWalking:      yesNo(m.DiffWalking),
		Sex:              sex,
		AgeCategory:      AgeCategoryAt(u.DateOfBirth, time.Now()),
		Race:             race,
		Diabetic:         yesNo(m.Diabetic),
		PhysicalActivity: yesNo(m.PhysicalActivity),
		GenHealth:        genHealth,
		SleepTime:        sleep,
		Asthma:           yesNo(m.Asthma),
		KidneyDisease:    yesNo(m.KidneyDisease),
		SkinCancer:       yesNo(m.SkinCancer),
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
