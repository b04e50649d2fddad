package domain

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed time range expression. It aborts a run
// before any I/O happens.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time range %q: %s", e.Input, e.Reason)
}

// QueryError reports a failed counter fetch for one period. There is no
// partial-aggregate fallback; the run aborts.
type QueryError struct {
	Period Period
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("counter query for period %s failed: %v", e.Period, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// FormulaError reports an invalid derived PEG definition. Definitions are
// validated before either period is processed, so this is always fatal.
type FormulaError struct {
	Name    string
	Formula string
	Reason  string
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("derived peg %q (%s): %s", e.Name, e.Formula, e.Reason)
}

// PromptTooLargeError means even the minimal prompt content (every non-stable
// PEG) exceeds the configured token budget.
type PromptTooLargeError struct {
	Estimated int
	Budget    int
}

func (e *PromptTooLargeError) Error() string {
	return fmt.Sprintf("minimal prompt content estimated at %d tokens exceeds budget of %d", e.Estimated, e.Budget)
}

// EndpointFailure records one failed dispatch attempt.
type EndpointFailure struct {
	Endpoint string
	Attempt  int
	Reason   string
}

func (f EndpointFailure) String() string {
	return fmt.Sprintf("%s (attempt %d): %s", f.Endpoint, f.Attempt, f.Reason)
}

// AnalysisFailedError aggregates every attempt after all configured endpoints
// have been exhausted.
type AnalysisFailedError struct {
	Failures []EndpointFailure
}

func (e *AnalysisFailedError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.String())
	}
	return fmt.Sprintf("all %d analysis endpoints failed: %s",
		len(e.Failures), strings.Join(reasons, "; "))
}
