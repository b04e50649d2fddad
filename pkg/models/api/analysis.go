package api

import "time"

// AnalysisRequest is the POST /api/v1/analysis body.
type AnalysisRequest struct {
	Source       string   `json:"source"`
	Profile      string   `json:"profile"`
	RangeN1      string   `json:"range_n1"`
	RangeN       string   `json:"range_n"`
	AnalysisType string   `json:"analysis_type,omitempty"`
	SelectedPegs []string `json:"selected_pegs,omitempty"`
}

type ComparisonRecord struct {
	Peg       string   `json:"peg"`
	Group     string   `json:"group,omitempty"`
	ValueN1   *float64 `json:"value_n1"`
	ValueN    *float64 `json:"value_n"`
	Delta     *float64 `json:"delta"`
	PctChange *float64 `json:"pct_change"`
	Pattern   string   `json:"pattern"`
}

type Warning struct {
	Category string `json:"category"`
	Peg      string `json:"peg"`
	Group    string `json:"group,omitempty"`
	Message  string `json:"message"`
}

type AnalysisResponse struct {
	RangeN1         string             `json:"range_n1"`
	RangeN          string             `json:"range_n"`
	Summary         string             `json:"summary"`
	KeyInsights     []string           `json:"key_insights"`
	Recommendations []string           `json:"recommendations"`
	ModelUsed       string             `json:"model_used"`
	TokensUsed      int                `json:"tokens_used"`
	ConfidenceScore *float64           `json:"confidence_score,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
	Records         []ComparisonRecord `json:"records"`
	Warnings        []Warning          `json:"warnings"`
}

type Source struct {
	Name string `json:"name"`
}
