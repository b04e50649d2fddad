package analysis

import (
	"context"
	"time"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/rs/zerolog"
)

// maxRetriesPerEndpoint caps the configurable extra attempts so failover can
// never become unbounded.
const maxRetriesPerEndpoint = 3

// Orchestrator turns comparison output into one bounded analysis call:
// strategy selection, prompt construction under the token budget, then
// sequential failover across the configured endpoints. Endpoints are tried in
// declared priority order; every failed attempt is logged and accumulated,
// and only exhausting the whole list surfaces an error to the caller.
type Orchestrator struct {
	endpoints []Endpoint
	budget    int
	retries   int
}

// NewOrchestrator creates an orchestrator. retriesPerEndpoint is the number
// of extra attempts per endpoint (0 keeps the single-attempt baseline; values
// above the cap are clamped).
func NewOrchestrator(endpoints []Endpoint, tokenBudget, retriesPerEndpoint int) *Orchestrator {
	if retriesPerEndpoint < 0 {
		retriesPerEndpoint = 0
	}
	if retriesPerEndpoint > maxRetriesPerEndpoint {
		retriesPerEndpoint = maxRetriesPerEndpoint
	}
	return &Orchestrator{
		endpoints: endpoints,
		budget:    tokenBudget,
		retries:   retriesPerEndpoint,
	}
}

// Analyze runs one analysis call for the given comparison input.
func (o *Orchestrator) Analyze(ctx context.Context, analysisType domain.AnalysisType, in Input) (domain.AnalysisResult, error) {
	logger := zerolog.Ctx(ctx)

	strategy, err := ForType(analysisType)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	prompt, err := buildPrompt(strategy, in, o.budget)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	logger.Debug().
		Str("strategy", string(strategy.Type())).
		Int("estimated_tokens", EstimateTokens(prompt)).
		Int("token_budget", o.budget).
		Msg("prompt built")

	var failures []domain.EndpointFailure
	for _, ep := range o.endpoints {
		for attempt := 1; attempt <= o.retries+1; attempt++ {
			result, err := ep.Submit(ctx, prompt, o.budget)
			if err == nil {
				if result.Timestamp.IsZero() {
					result.Timestamp = time.Now()
				}
				logger.Info().
					Str("endpoint", ep.Name()).
					Str("model", result.ModelUsed).
					Int("tokens_used", result.TokensUsed).
					Msg("analysis succeeded")
				return result, nil
			}

			failures = append(failures, domain.EndpointFailure{
				Endpoint: ep.Name(),
				Attempt:  attempt,
				Reason:   err.Error(),
			})
			logger.Warn().
				Str("endpoint", ep.Name()).
				Int("attempt", attempt).
				Err(err).
				Msg("analysis endpoint failed, continuing failover")
		}
	}

	return domain.AnalysisResult{}, &domain.AnalysisFailedError{Failures: failures}
}
