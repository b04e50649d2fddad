package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

// Endpoint is one analysis backend. The orchestrator never inspects concrete
// types; anything that can turn a prompt into an AnalysisResult qualifies.
type Endpoint interface {
	Name() string
	Submit(ctx context.Context, prompt string, maxTokens int) (domain.AnalysisResult, error)
}

// EndpointConfig describes one HTTP analysis backend.
type EndpointConfig struct {
	Name    string        `mapstructure:"name"`
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

const defaultEndpointTimeout = 30 * time.Second

type httpEndpoint struct {
	cfg    EndpointConfig
	client *http.Client
}

// NewHTTPEndpoint creates an Endpoint speaking the JSON analysis contract.
// client may be nil, in which case http.DefaultClient applies; the configured
// timeout bounds each submit attempt regardless.
func NewHTTPEndpoint(cfg EndpointConfig, client *http.Client) Endpoint {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultEndpointTimeout
	}
	return &httpEndpoint{cfg: cfg, client: client}
}

func (e *httpEndpoint) Name() string {
	return e.cfg.Name
}

type submitRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
	Model     string `json:"model,omitempty"`
}

type submitResponse struct {
	Summary         string   `json:"summary"`
	KeyInsights     []string `json:"key_insights"`
	Recommendations []string `json:"recommendations"`
	ModelUsed       string   `json:"model_used"`
	TokensUsed      int      `json:"tokens_used"`
	ConfidenceScore *float64 `json:"confidence_score"`
}

func (e *httpEndpoint) Submit(ctx context.Context, prompt string, maxTokens int) (domain.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(submitRequest{
		Prompt:    prompt,
		MaxTokens: maxTokens,
		Model:     e.cfg.Model,
	})
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return domain.AnalysisResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("malformed response body: %w", err)
	}
	if payload.Summary == "" {
		return domain.AnalysisResult{}, fmt.Errorf("response missing required summary field")
	}

	model := payload.ModelUsed
	if model == "" {
		model = e.cfg.Model
	}

	return domain.AnalysisResult{
		Summary:         payload.Summary,
		KeyInsights:     payload.KeyInsights,
		Recommendations: payload.Recommendations,
		ModelUsed:       model,
		TokensUsed:      payload.TokensUsed,
		ConfidenceScore: payload.ConfidenceScore,
		Timestamp:       time.Now(),
	}, nil
}
