package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

func successHandler(model string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"summary":         "cell performance is degrading",
			"key_insights":    []string{"call drops doubled"},
			"recommendations": []string{"inspect ne1"},
			"model_used":      model,
			"tokens_used":     123,
		})
	}
}

func endpointFor(t *testing.T, name string, srv *httptest.Server) Endpoint {
	t.Helper()
	return NewHTTPEndpoint(EndpointConfig{
		Name:    name,
		URL:     srv.URL,
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, srv.Client())
}

func TestOrchestrator_FailoverReachesLastEndpoint(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	malformed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer malformed.Close()

	ok := httptest.NewServer(successHandler("backup-model"))
	defer ok.Close()

	o := NewOrchestrator([]Endpoint{
		endpointFor(t, "primary", failing),
		endpointFor(t, "secondary", malformed),
		endpointFor(t, "tertiary", ok),
	}, 100000, 0)

	result, err := o.Analyze(context.Background(), domain.AnalysisOverall, testInput(1, 1))
	require.NoError(t, err)

	assert.Equal(t, "cell performance is degrading", result.Summary)
	assert.Equal(t, "backup-model", result.ModelUsed)
	assert.Equal(t, 123, result.TokensUsed)
	assert.False(t, result.Timestamp.IsZero())
}

func TestOrchestrator_AllEndpointsExhausted(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	o := NewOrchestrator([]Endpoint{
		endpointFor(t, "a", failing),
		endpointFor(t, "b", failing),
		endpointFor(t, "c", failing),
	}, 100000, 0)

	_, err := o.Analyze(context.Background(), domain.AnalysisOverall, testInput(1, 0))
	require.Error(t, err)

	var failed *domain.AnalysisFailedError
	require.True(t, errors.As(err, &failed), "expected AnalysisFailedError, got %T", err)
	require.Len(t, failed.Failures, 3)
	assert.Equal(t, "a", failed.Failures[0].Endpoint)
	assert.Equal(t, "b", failed.Failures[1].Endpoint)
	assert.Equal(t, "c", failed.Failures[2].Endpoint)
}

func TestOrchestrator_MissingRequiredFieldTriggersFailover(t *testing.T) {
	noSummary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"model_used": "m", "tokens_used": 5})
	}))
	defer noSummary.Close()

	ok := httptest.NewServer(successHandler("fallback"))
	defer ok.Close()

	o := NewOrchestrator([]Endpoint{
		endpointFor(t, "empty", noSummary),
		endpointFor(t, "good", ok),
	}, 100000, 0)

	result, err := o.Analyze(context.Background(), domain.AnalysisOverall, testInput(1, 0))
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.ModelUsed)
}

func TestOrchestrator_BoundedRetriesPerEndpoint(t *testing.T) {
	var calls atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer failing.Close()

	o := NewOrchestrator([]Endpoint{endpointFor(t, "only", failing)}, 100000, 1)

	_, err := o.Analyze(context.Background(), domain.AnalysisOverall, testInput(1, 0))
	require.Error(t, err)

	var failed *domain.AnalysisFailedError
	require.True(t, errors.As(err, &failed))
	assert.Len(t, failed.Failures, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOrchestrator_TimeoutAdvancesFailover(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		successHandler("slow")(w, r)
	}))
	defer slow.Close()

	ok := httptest.NewServer(successHandler("fast"))
	defer ok.Close()

	slowEp := NewHTTPEndpoint(EndpointConfig{
		Name:    "slow",
		URL:     slow.URL,
		Timeout: 50 * time.Millisecond,
	}, slow.Client())

	o := NewOrchestrator([]Endpoint{slowEp, endpointFor(t, "fast", ok)}, 100000, 0)

	start := time.Now()
	result, err := o.Analyze(context.Background(), domain.AnalysisOverall, testInput(1, 0))
	require.NoError(t, err)
	assert.Equal(t, "fast", result.ModelUsed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestOrchestrator_PromptTooLargeSkipsDispatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		successHandler("m")(w, r)
	}))
	defer srv.Close()

	o := NewOrchestrator([]Endpoint{endpointFor(t, "x", srv)}, 5, 0)

	_, err := o.Analyze(context.Background(), domain.AnalysisOverall, testInput(10, 0))
	require.Error(t, err)

	var tooLarge *domain.PromptTooLargeError
	assert.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int32(0), calls.Load())
}
