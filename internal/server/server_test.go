package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"MarketAnalytics/internal/analytics"
	"MarketAnalytics/internal/model"
	"MarketAnalytics/internal/recorder"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	res *model.AnalyticsResult
	err error
}

func (s stubRunner) RunAnalysis(context.Context) (*model.AnalyticsResult, error) {
	return s.res, s.err
}

func newTestServer(t *testing.T, rec recorder.Recorder, runner Runner) http.Handler {
	t.Helper()
	return New(Config{
		Log:      zerolog.Nop(),
		Recorder: rec,
		Runner:   runner,
		Defaults: analytics.DefaultConfig(),
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// pricesJSON renders daily points starting 2024-01-01; NaN entries become null.
func pricesJSON(values ...float64) string {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	parts := make([]string, len(values))
	for i, v := range values {
		val := "null"
		if v == v {
			val = fmt.Sprintf("%g", v)
		}
		parts[i] = fmt.Sprintf(`{"time":%q,"value":%s}`, day.AddDate(0, 0, i).Format(time.RFC3339), val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

const smallWindows = `"windows":{"sma_short":2,"sma_long":3,"ema_fast":2,"ema_slow":3,"rsi_period":2,
	"macd_fast":2,"macd_slow":3,"macd_signal":2,"bollinger_window":3,"bollinger_std":2}`

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAnalyze_OK(t *testing.T) {
	body := `{"prices":{"AAA":` + pricesJSON(100, 101, 99, 103, 104, 102) +
		`,"BBB":` + pricesJSON(50, 50.5, 50.2, 51, 52, 51.5) +
		`},"config":{` + smallWindows + `,"periods_per_year":252}}`

	rec := do(t, newTestServer(t, nil, nil), http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.AnalyticsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.PerAsset, 2)
	assert.Len(t, res.PerAsset["AAA"].Returns, 5)
	assert.Len(t, res.PerAsset["AAA"].Indicators.SMAShort, 6)
	assert.Equal(t, []string{"AAA", "BBB"}, res.Correlation.Assets)
	assert.NotNil(t, res.PerAsset["BBB"].Risk.Volatility)
}

func TestAnalyze_PartialConfigKeepsDefaults(t *testing.T) {
	body := `{"prices":{"AAA":` + pricesJSON(1, 2, 3, 4) + `},"config":{"indicators":["rsi"],"windows":{"rsi_period":2}}}`
	rec := do(t, newTestServer(t, nil, nil), http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.AnalyticsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	ind := res.PerAsset["AAA"].Indicators
	assert.Len(t, ind.RSI, 4)
	assert.Nil(t, ind.SMAShort)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"prices":`, http.StatusBadRequest},
		{"bad window", `{"prices":{"AAA":` + pricesJSON(1, 2, 3) + `},"config":{"windows":{"sma_short":-1}}}`, http.StatusBadRequest},
		{"negative price", `{"prices":{"AAA":` + pricesJSON(1, -2, 3) + `}}`, http.StatusBadRequest},
		{"unordered", `{"prices":{"AAA":[{"time":"2024-01-02T00:00:00Z","value":1},{"time":"2024-01-01T00:00:00Z","value":2}]}}`, http.StatusBadRequest},
		{"no assets", `{"prices":{}}`, http.StatusUnprocessableEntity},
		{"asset without data", `{"prices":{"AAA":` + pricesJSON(1, 2) + `,"BBB":[]}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, nil, nil), http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestAnalyze_MissingAssetNamed(t *testing.T) {
	body := `{"prices":{"AAA":` + pricesJSON(1, 2) + `,"GHOST":` + pricesJSON(nan(), nan()) + `}}`
	rec := do(t, newTestServer(t, nil, nil), http.MethodPost, "/api/analyze", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "GHOST")
}

func TestAnalyze_ShortSpanStaysSerializable(t *testing.T) {
	body := `{"prices":{"X":[
		{"time":"2024-01-01T00:00:00Z","value":100},
		{"time":"2024-01-01T01:00:00Z","value":120},
		{"time":"2024-01-01T02:00:00Z","value":150}]},
		"config":{` + smallWindows + `}}`

	rec := do(t, newTestServer(t, nil, nil), http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.Bytes())

	var res model.AnalyticsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Nil(t, res.PerAsset["X"].Risk.AnnualizedReturn)
	assert.NotEmpty(t, res.PerAsset["X"].Risk.Issues)
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	s := New(Config{Log: zerolog.Nop()})
	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestRuns(t *testing.T) {
	store, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	res := &model.AnalyticsResult{
		PerAsset:   map[string]model.AssetAnalytics{"AAA": {Observations: 3}},
		Highlights: model.Highlights{BestPerformer: "AAA"},
	}
	require.NoError(t, store.RecordRun(&recorder.RunRecord{ID: "run-1", Assets: []string{"AAA"}, Result: res}))
	h := newTestServer(t, store, nil)

	rec := do(t, h, http.MethodGet, "/api/runs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []recorder.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)

	rec = do(t, h, http.MethodGet, "/api/runs/run-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"best_performer":"AAA"`)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/runs/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/runs?limit=x", "").Code)
}

func TestRuns_EmptyListIsArray(t *testing.T) {
	rec := do(t, newTestServer(t, nil, nil), http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTriggerRun(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable,
		do(t, newTestServer(t, nil, nil), http.MethodPost, "/api/runs", "").Code)

	ok := stubRunner{res: &model.AnalyticsResult{PerAsset: map[string]model.AssetAnalytics{}}}
	assert.Equal(t, http.StatusOK, do(t, newTestServer(t, nil, ok), http.MethodPost, "/api/runs", "").Code)

	missing := stubRunner{err: fmt.Errorf("analyze: %w", &model.MissingAssetError{AssetID: "X"})}
	assert.Equal(t, http.StatusUnprocessableEntity,
		do(t, newTestServer(t, nil, missing), http.MethodPost, "/api/runs", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil, nil)
	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte(`analytics_http_requests_total{route="/health",status="200"}`)))
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
