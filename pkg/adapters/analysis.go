package adapters

import (
	"github.com/de-tools/peg-lens/pkg/models/api"
	"github.com/de-tools/peg-lens/pkg/models/domain"
)

func MapPegValueDomainToApi(v domain.PegValue) *float64 {
	if !v.IsNumber() {
		return nil
	}
	value := v.Value
	return &value
}

func MapComparisonRecordDomainToApi(r domain.ComparisonRecord) api.ComparisonRecord {
	return api.ComparisonRecord{
		Peg:       r.Peg,
		Group:     r.Group.Label(),
		ValueN1:   MapPegValueDomainToApi(r.ValueN1),
		ValueN:    MapPegValueDomainToApi(r.ValueN),
		Delta:     r.Delta,
		PctChange: r.PctChange,
		Pattern:   string(r.Pattern),
	}
}

func MapWarningDomainToApi(w domain.Warning) api.Warning {
	return api.Warning{
		Category: string(w.Category),
		Peg:      w.Peg,
		Group:    w.Group.Label(),
		Message:  w.Message,
	}
}

func MapAnalysisReportDomainToApi(rep *domain.AnalysisReport) api.AnalysisResponse {
	resp := api.AnalysisResponse{
		RangeN1:         rep.RangeN1.String(),
		RangeN:          rep.RangeN.String(),
		Summary:         rep.Result.Summary,
		KeyInsights:     rep.Result.KeyInsights,
		Recommendations: rep.Result.Recommendations,
		ModelUsed:       rep.Result.ModelUsed,
		TokensUsed:      rep.Result.TokensUsed,
		ConfidenceScore: rep.Result.ConfidenceScore,
		Timestamp:       rep.Result.Timestamp,
		Records:         make([]api.ComparisonRecord, 0, len(rep.Records)),
		Warnings:        make([]api.Warning, 0, len(rep.Warnings)),
	}
	for _, r := range rep.Records {
		resp.Records = append(resp.Records, MapComparisonRecordDomainToApi(r))
	}
	for _, w := range rep.Warnings {
		resp.Warnings = append(resp.Warnings, MapWarningDomainToApi(w))
	}
	return resp
}
