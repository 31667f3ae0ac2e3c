package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPipeline struct {
	result *models.ProcessResult
	err    error
	got    *models.SensorData
}

func (s *stubPipeline) Process(_ context.Context, data *models.SensorData) (*models.ProcessResult, error) {
	s.got = data
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubRepo struct {
	records []models.SensorData
	err     error
}

func (s *stubRepo) Save(context.Context, *models.SensorData, *models.AnalysisResult) error {
	return nil
}

func (s *stubRepo) FindBySensor(context.Context, string, time.Time, time.Time) ([]models.SensorData, error) {
	return s.records, s.err
}

func newTestRouter(pipeline *stubPipeline, repo *stubRepo) http.Handler {
	metrics := observability.NewMetrics()
	handler := NewHandler(pipeline, repo, metrics, zap.NewNop())
	return NewRouter(handler, metrics)
}

func TestReceiveSensorData(t *testing.T) {
	pipeline := &stubPipeline{result: &models.ProcessResult{
		Analysis:  models.AnalysisResult{IsAnomaly: true, Anomalies: []string{"v1"}},
		Published: true,
	}}
	router := newTestRouter(pipeline, &stubRepo{})

	body := `{"sensorId":"T1","sensorType":"temperature","timestamp":"2026-08-01T12:00:00Z","values":{"reading":75}}`
	req := httptest.NewRequest(http.MethodPost, "/api/sensordata", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "T1", resp["sensorId"])
	assert.Equal(t, true, resp["anomalyDetected"])

	require.NotNil(t, pipeline.got)
	assert.Equal(t, "temperature", pipeline.got.SensorType)
}

func TestReceiveSensorDataRejectsMissingIdentity(t *testing.T) {
	pipeline := &stubPipeline{}
	router := newTestRouter(pipeline, &stubRepo{})

	body := `{"sensorType":"temperature","values":{"reading":75}}`
	req := httptest.NewRequest(http.MethodPost, "/api/sensordata", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// The record never entered the pipeline.
	assert.Nil(t, pipeline.got)
}

func TestReceiveSensorDataRejectsBadJSON(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/sensordata", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiveSensorDataPipelineFailure(t *testing.T) {
	pipeline := &stubPipeline{err: errors.New("db down")}
	router := newTestRouter(pipeline, &stubRepo{})

	body := `{"sensorId":"T1","sensorType":"temperature","values":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/sensordata", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHistory(t *testing.T) {
	repo := &stubRepo{records: []models.SensorData{
		{SensorID: "T1", SensorType: "temperature"},
	}}
	router := newTestRouter(&stubPipeline{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/sensordata/T1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var records []models.SensorData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "T1", records[0].SensorID)
}

func TestHistoryRejectsBadWindow(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/sensordata/T1?start=yesterday", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/sensordata/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestStats(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/sensordata/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uptime")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
