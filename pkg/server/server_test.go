package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/peg-lens/pkg/models/api"
	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/services/engine"
)

type mockAnalysisService struct {
	mock.Mock
}

func (m *mockAnalysisService) Analyze(ctx context.Context, req engine.RunRequest) (*domain.AnalysisReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisReport), args.Error(1)
}

func (m *mockAnalysisService) ListBackends() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func sampleReport() *domain.AnalysisReport {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	delta := 100.0
	pct := 10.0
	return &domain.AnalysisReport{
		RangeN1: domain.TimeRange{Start: start, End: start.Add(24 * time.Hour)},
		RangeN:  domain.TimeRange{Start: start.Add(24 * time.Hour), End: start.Add(48 * time.Hour)},
		Records: []domain.ComparisonRecord{
			{
				Peg:       "A",
				ValueN1:   domain.NumberValue(1000),
				ValueN:    domain.NumberValue(1100),
				Delta:     &delta,
				PctChange: &pct,
				Pattern:   domain.PatternStable,
			},
			{
				Peg:     "B",
				ValueN1: domain.NumberValue(950),
				ValueN:  domain.MissingValue(),
				Pattern: domain.PatternVanished,
			},
		},
		Result: domain.AnalysisResult{
			Summary:    "B stopped reporting",
			ModelUsed:  "test-model",
			TokensUsed: 42,
			Timestamp:  time.Now(),
		},
	}
}

func newTestAPI(t *testing.T, svc *mockAnalysisService) http.Handler {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	webAPI := NewWebAPI(logger, Config{
		Addr: ":0",
		Dependencies: Dependencies{
			Analysis: svc,
		},
	})
	return webAPI.Router()
}

func TestWebAPI_RunAnalysis(t *testing.T) {
	svc := new(mockAnalysisService)
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(req engine.RunRequest) bool {
		return req.Backend == "postgres" && req.Params.RangeN1 != ""
	})).Return(sampleReport(), nil)

	body, _ := json.Marshal(api.AnalysisRequest{
		Source:  "postgres",
		Profile: "default",
		RangeN1: "2025-06-01 00:00:00~2025-06-02 00:00:00",
		RangeN:  "2025-06-02 00:00:00~2025-06-03 00:00:00",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newTestAPI(t, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.AnalysisResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "B stopped reporting", resp.Summary)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "stable", resp.Records[0].Pattern)
	// Missing values serialize as null, not zero.
	assert.Nil(t, resp.Records[1].ValueN)

	svc.AssertExpectations(t)
}

func TestWebAPI_RunAnalysis_MissingFields(t *testing.T) {
	svc := new(mockAnalysisService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	newTestAPI(t, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestWebAPI_RunAnalysis_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"parse error", &domain.ParseError{Input: "x", Reason: "bad"}, http.StatusBadRequest},
		{"formula error", &domain.FormulaError{Name: "d", Reason: "bad"}, http.StatusBadRequest},
		{"prompt too large", &domain.PromptTooLargeError{Estimated: 10, Budget: 5}, http.StatusUnprocessableEntity},
		{"query error", &domain.QueryError{Period: domain.PeriodN}, http.StatusBadGateway},
		{"endpoints exhausted", &domain.AnalysisFailedError{}, http.StatusBadGateway},
	}

	body, _ := json.Marshal(api.AnalysisRequest{
		Source:  "postgres",
		RangeN1: "2025-06-01 00:00:00~2025-06-02 00:00:00",
		RangeN:  "2025-06-02 00:00:00~2025-06-03 00:00:00",
	})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockAnalysisService)
			svc.On("Analyze", mock.Anything, mock.Anything).Return(nil, tc.err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			newTestAPI(t, svc).ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestWebAPI_ListSources(t *testing.T) {
	svc := new(mockAnalysisService)
	svc.On("ListBackends").Return([]string{"postgres", "snowflake"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil)
	rec := httptest.NewRecorder()
	newTestAPI(t, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var sources []api.Source
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sources))
	require.Len(t, sources, 2)
	assert.Equal(t, "postgres", sources[0].Name)
}

func TestWebAPI_UnknownRoute(t *testing.T) {
	svc := new(mockAnalysisService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	newTestAPI(t, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
