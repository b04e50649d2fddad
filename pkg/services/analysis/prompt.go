package analysis

import (
	"strings"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

// tokensPerChar is a rough character-to-token ratio. It only has to be
// monotonic in text length; precision is the backend's problem.
const tokensPerChar = 0.25

// EstimateTokens approximates the token count of s.
func EstimateTokens(s string) int {
	return int(float64(len(s))*tokensPerChar) + 1
}

// buildPrompt assembles the strategy's prompt under the token budget. Stable
// record lines are appended only while they fit; if the frame plus the
// required (non-stable) lines alone exceed the budget, the call fails with a
// PromptTooLargeError.
func buildPrompt(strategy Strategy, in Input, budget int) (string, error) {
	frame := strategy.Frame(in)
	required, optional := strategy.Split(in)

	var b strings.Builder
	b.WriteString(frame)
	b.WriteString("Counter comparison:\n")
	for _, line := range required {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if est := EstimateTokens(b.String()); est > budget {
		return "", &domain.PromptTooLargeError{Estimated: est, Budget: budget}
	}

	for _, line := range optional {
		if EstimateTokens(b.String())+EstimateTokens(line) > budget {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String(), nil
}
