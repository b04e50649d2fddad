package analysis

import (
	"fmt"
	"strings"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

// Input is everything a strategy may draw on when framing a prompt.
type Input struct {
	RangeN1  domain.TimeRange
	RangeN   domain.TimeRange
	Records  []domain.ComparisonRecord
	Warnings []domain.Warning
}

// Strategy frames the comparison for the analysis backend. The three
// implementations differ only in which records they include and how the
// narrative is framed; budget enforcement and dispatch are shared.
type Strategy interface {
	Type() domain.AnalysisType
	// Frame returns the fixed prompt preamble.
	Frame(in Input) string
	// Split partitions the records into lines that must survive budget
	// truncation and lines that may be dropped, in drop order.
	Split(in Input) (required, optional []string)
}

// ForType resolves the strategy for an analysis type.
func ForType(t domain.AnalysisType) (Strategy, error) {
	switch t {
	case domain.AnalysisOverall, "":
		return overallStrategy{}, nil
	case domain.AnalysisEnhanced:
		return enhancedStrategy{}, nil
	case domain.AnalysisSpecific:
		return specificStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown analysis type %q", t)
	}
}

type overallStrategy struct{}

func (overallStrategy) Type() domain.AnalysisType {
	return domain.AnalysisOverall
}

func (overallStrategy) Frame(in Input) string {
	var b strings.Builder
	b.WriteString("You are a cellular network performance analyst.\n")
	b.WriteString("Compare the two measurement windows below and describe the overall network behavior.\n")
	fmt.Fprintf(&b, "Period N-1: %s\nPeriod N: %s\n", in.RangeN1, in.RangeN)
	b.WriteString("Respond with a summary, key insights and recommendations.\n")
	return b.String()
}

func (overallStrategy) Split(in Input) ([]string, []string) {
	return splitByStability(in.Records)
}

type enhancedStrategy struct{}

func (enhancedStrategy) Type() domain.AnalysisType {
	return domain.AnalysisEnhanced
}

func (enhancedStrategy) Frame(in Input) string {
	var b strings.Builder
	b.WriteString(overallStrategy{}.Frame(in))
	if len(in.Warnings) > 0 {
		b.WriteString("Pay particular attention to the following degradations:\n")
		for _, w := range in.Warnings {
			fmt.Fprintf(&b, "- [%s] %s\n", w.Category, w.Message)
		}
	}
	return b.String()
}

func (enhancedStrategy) Split(in Input) ([]string, []string) {
	return splitByStability(in.Records)
}

type specificStrategy struct{}

func (specificStrategy) Type() domain.AnalysisType {
	return domain.AnalysisSpecific
}

func (specificStrategy) Frame(in Input) string {
	var b strings.Builder
	b.WriteString("You are a cellular network performance analyst.\n")
	b.WriteString("Analyze only the counters listed below; do not speculate about others.\n")
	fmt.Fprintf(&b, "Period N-1: %s\nPeriod N: %s\n", in.RangeN1, in.RangeN)
	return b.String()
}

func (specificStrategy) Split(in Input) ([]string, []string) {
	return splitByStability(in.Records)
}

// splitByStability keeps every non-stable record as required content; stable
// records are the first to go when the token budget is tight.
func splitByStability(records []domain.ComparisonRecord) (required, optional []string) {
	for _, r := range records {
		line := recordLine(r)
		if r.Pattern == domain.PatternStable {
			optional = append(optional, line)
		} else {
			required = append(required, line)
		}
	}
	return required, optional
}

func recordLine(r domain.ComparisonRecord) string {
	var change string
	switch {
	case r.PctChange != nil:
		change = fmt.Sprintf("%+.1f%%", *r.PctChange)
	case r.Delta != nil:
		change = fmt.Sprintf("delta %+g", *r.Delta)
	default:
		change = "n/a"
	}
	return fmt.Sprintf("%s: N-1=%s N=%s change=%s pattern=%s",
		r.Name(), r.ValueN1, r.ValueN, change, r.Pattern)
}
