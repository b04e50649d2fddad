package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/peg-lens/pkg/adapters"
	"github.com/de-tools/peg-lens/pkg/models/api"
	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/services/engine"
)

// Service is the analysis capability the handler exposes over HTTP.
type Service interface {
	Analyze(ctx context.Context, req engine.RunRequest) (*domain.AnalysisReport, error)
	ListBackends() []string
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Source == "" || req.RangeN1 == "" || req.RangeN == "" {
		http.Error(w, "source, range_n1 and range_n are required", http.StatusBadRequest)
		return
	}

	report, err := h.service.Analyze(ctx, engine.RunRequest{
		Backend: req.Source,
		Profile: req.Profile,
		Params: engine.Params{
			RangeN1:      req.RangeN1,
			RangeN:       req.RangeN,
			AnalysisType: domain.AnalysisType(req.AnalysisType),
			SelectedPegs: req.SelectedPegs,
		},
	})
	if err != nil {
		logger.Error().Err(err).Str("source", req.Source).Msg("analysis run failed")
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(adapters.MapAnalysisReportDomainToApi(report)); err != nil {
		logger.Error().Err(err).Msg("failed to encode analysis response")
	}
}

func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	backends := h.service.ListBackends()
	response := make([]api.Source, 0, len(backends))
	for _, b := range backends {
		response = append(response, api.Source{Name: b})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("failed to encode sources")
	}
}

func statusFor(err error) int {
	var (
		parseErr   *domain.ParseError
		formulaErr *domain.FormulaError
		promptErr  *domain.PromptTooLargeError
		queryErr   *domain.QueryError
		failedErr  *domain.AnalysisFailedError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &formulaErr):
		return http.StatusBadRequest
	case errors.As(err, &promptErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &queryErr), errors.As(err, &failedErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
