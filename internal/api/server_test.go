package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartpredict/internal/ml"
	"heartpredict/internal/predict"
	"heartpredict/internal/store"
)

type fakeService struct {
	result     *predict.Result
	analyzeErr error
	history    []store.Record
	historyErr error

	lastCollection string
	lastUserID     string
}

func (f *fakeService) Analyze(_ context.Context, userID, recordID, collection string) (*predict.Result, error) {
	f.lastUserID = userID
	f.lastCollection = collection
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.result, nil
}

func (f *fakeService) History(collection, userID string) ([]store.Record, error) {
	f.lastUserID = userID
	f.lastCollection = collection
	return f.history, f.historyErr
}

func (f *fakeService) Models() []ml.ModelInfo {
	return []ml.ModelInfo{
		{ID: "Logistic_Regression", Type: "logistic_regression", Accuracy: 0.91},
		{ID: "Random_Forest", Type: "random_forest", Accuracy: 0.89},
	}
}

func somePredictions() []ml.Prediction {
	return []ml.Prediction{
		{Model: "Logistic_Regression", Label: ml.LabelPositive, Probability: "73.42%"},
		{Model: "Random_Forest", Label: ml.LabelNegative, Probability: "12.00%"},
	}
}

func doRequest(t *testing.T, svc Service, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	NewServer(svc, 0, "predictions_analysis").Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Predict(t *testing.T) {
	t.Parallel()

	svc := &fakeService{result: &predict.Result{
		UserID:      "user-1",
		Predictions: somePredictions(),
		Timestamp:   time.Now().UTC(),
		Saved:       true,
		RecordID:    "rec-1",
	}}

	rec := doRequest(t, svc, http.MethodPost, "/predict", PredictRequest{
		UserID: "user-1", RecordID: "med-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.UserID)
	assert.True(t, resp.Saved)
	require.Len(t, resp.Predictions, 2)
	assert.Equal(t, "73.42%", resp.Predictions[0].Probability)

	assert.Equal(t, "predictions_analysis", svc.lastCollection, "default collection not applied")
}

func TestServer_Predict_ExplicitCollection(t *testing.T) {
	t.Parallel()

	svc := &fakeService{result: &predict.Result{UserID: "user-1"}}
	rec := doRequest(t, svc, http.MethodPost, "/predict", PredictRequest{
		UserID: "user-1", RecordID: "med-1", CollectionName: "study_cohort",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "study_cohort", svc.lastCollection)
}

func TestServer_Predict_BadRequest(t *testing.T) {
	t.Parallel()

	svc := &fakeService{}

	rec := doRequest(t, svc, http.MethodPost, "/predict", PredictRequest{UserID: "user-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, svc, http.MethodPost, "/predict", PredictRequest{RecordID: "med-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	NewServer(svc, 0, "c").Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Predict_PipelineFailure(t *testing.T) {
	t.Parallel()

	svc := &fakeService{analyzeErr: fmt.Errorf("failed to fetch health data: upstream down")}
	rec := doRequest(t, svc, http.MethodPost, "/predict", PredictRequest{
		UserID: "user-1", RecordID: "med-1",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["detail"], "Prediction failed")
	assert.Contains(t, resp["detail"], "upstream down")
}

func TestServer_History(t *testing.T) {
	t.Parallel()

	svc := &fakeService{history: []store.Record{{
		ID: "rec-1", UserID: "user-1", Predictions: somePredictions(),
		CreatedAt: "2024-06-15T12:00:00Z",
	}}}

	rec := doRequest(t, svc, http.MethodGet, "/predictions/user-1?collection_name=study_cohort", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []store.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "user-1", records[0].UserID)
	assert.Equal(t, "user-1", svc.lastUserID)
	assert.Equal(t, "study_cohort", svc.lastCollection)
}

// An unknown subject serializes as an empty JSON array, not null.
func TestServer_History_Empty(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, &fakeService{}, http.MethodGet, "/predictions/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestServer_History_Failure(t *testing.T) {
	t.Parallel()

	svc := &fakeService{historyErr: fmt.Errorf("db closed")}
	rec := doRequest(t, svc, http.MethodGet, "/predictions/user-1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Models(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, &fakeService{}, http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info []ml.ModelInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Len(t, info, 2)
	assert.Equal(t, "Logistic_Regression", info[0].ID)
}

func TestServer_HealthEndpoints(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, &fakeService{}, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var root map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, "healthy", root["status"])
	assert.Equal(t, "Health Prediction API", root["service"])

	rec = doRequest(t, &fakeService{}, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
