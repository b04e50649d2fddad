package domain

import "time"

// AnalysisType selects the prompt-construction strategy.
type AnalysisType string

const (
	// AnalysisOverall builds an integrated cell-wide narrative.
	AnalysisOverall AnalysisType = "overall"
	// AnalysisEnhanced adds highlighted degradation detail on top of the
	// integrated narrative.
	AnalysisEnhanced AnalysisType = "enhanced"
	// AnalysisSpecific restricts the narrative to a caller-selected PEG subset.
	AnalysisSpecific AnalysisType = "specific"
)

// AnalysisResult is the normalized response from an analysis backend.
type AnalysisResult struct {
	Summary         string
	KeyInsights     []string
	Recommendations []string
	ModelUsed       string
	TokensUsed      int
	ConfidenceScore *float64
	Timestamp       time.Time
}

// AnalysisReport is the full output contract of one engine run.
type AnalysisReport struct {
	RangeN1  TimeRange
	RangeN   TimeRange
	Records  []ComparisonRecord
	Warnings []Warning
	Result   AnalysisResult
}
