package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/models/store"
	"github.com/de-tools/peg-lens/pkg/services/aggregate"
	"github.com/de-tools/peg-lens/pkg/services/analysis"
	"github.com/de-tools/peg-lens/pkg/services/compare"
	"github.com/de-tools/peg-lens/pkg/services/config"
	"github.com/de-tools/peg-lens/pkg/services/formula"
	"github.com/de-tools/peg-lens/pkg/services/timerange"
	sqlstore "github.com/de-tools/peg-lens/pkg/store/sql"
)

// Engine runs one dual-period analysis: resolve both windows, aggregate and
// extend each period, compare, then drive the analysis backend. Stages run
// sequentially; concurrent runs share nothing but the read-only configuration.
type Engine struct {
	cfg          *config.Engine
	rows         sqlstore.RowSource
	resolver     *timerange.Resolver
	aggregator   *aggregate.Aggregator
	evaluator    *formula.Evaluator
	orchestrator *analysis.Orchestrator
}

// Params are the per-run inputs.
type Params struct {
	RangeN1 string
	RangeN  string
	// AnalysisType overrides the configured type when non-empty.
	AnalysisType domain.AnalysisType
	// SelectedPegs overrides the configured subset when non-empty.
	SelectedPegs []string
	Filters      store.RowFilters
}

// New builds an engine. Derived formulas are validated here, before any
// period is processed; an invalid definition fails construction with a
// FormulaError. endpoints may be nil, in which case HTTP endpoints are built
// from the configuration.
func New(cfg *config.Engine, rows sqlstore.RowSource, endpoints []analysis.Endpoint) (*Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	evaluator, err := formula.NewEvaluator(cfg.DerivedDefs(), cfg.KnownPegs)
	if err != nil {
		return nil, err
	}

	if endpoints == nil {
		endpoints = make([]analysis.Endpoint, 0, len(cfg.Endpoints))
		for _, epCfg := range cfg.Endpoints {
			endpoints = append(endpoints, analysis.NewHTTPEndpoint(epCfg, nil))
		}
	}

	return &Engine{
		cfg:          cfg,
		rows:         rows,
		resolver:     timerange.NewResolver(loc),
		aggregator:   aggregate.NewAggregator(cfg.GroupingScope),
		evaluator:    evaluator,
		orchestrator: analysis.NewOrchestrator(endpoints, cfg.TokenBudget, cfg.MaxRetriesPerEndpoint),
	}, nil
}

// Run executes one analysis. Cancellation is cooperative: the context is
// checked before each stage, but a dispatch already in flight runs to its
// per-attempt timeout.
func (e *Engine) Run(ctx context.Context, p Params) (*domain.AnalysisReport, error) {
	logger := zerolog.Ctx(ctx)

	rangeN1, err := e.resolver.Resolve(p.RangeN1)
	if err != nil {
		return nil, err
	}
	rangeN, err := e.resolver.Resolve(p.RangeN)
	if err != nil {
		return nil, err
	}

	aggN1, err := e.loadPeriod(ctx, domain.PeriodN1, rangeN1, p.Filters)
	if err != nil {
		return nil, err
	}
	aggN, err := e.loadPeriod(ctx, domain.PeriodN, rangeN, p.Filters)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	selected := p.SelectedPegs
	if len(selected) == 0 {
		selected = e.cfg.SelectedPegs
	}
	comparator := compare.NewComparator(selected)
	records, warnings := comparator.Compare(aggN1, aggN)

	logger.Info().
		Int("records", len(records)).
		Int("warnings", len(warnings)).
		Msg("period comparison complete")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysisType := p.AnalysisType
	if analysisType == "" {
		analysisType = e.cfg.AnalysisType
	}
	result, err := e.orchestrator.Analyze(ctx, analysisType, analysis.Input{
		RangeN1:  rangeN1,
		RangeN:   rangeN,
		Records:  records,
		Warnings: warnings,
	})
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisReport{
		RangeN1:  rangeN1,
		RangeN:   rangeN,
		Records:  records,
		Warnings: warnings,
		Result:   result,
	}, nil
}

// loadPeriod fetches, aggregates and extends one period. A fetch failure is
// fatal for the run; there is no partial-aggregate fallback.
func (e *Engine) loadPeriod(ctx context.Context, period domain.Period, tr domain.TimeRange, filters store.RowFilters) (domain.PeriodAggregates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := e.rows.FetchRows(ctx, tr, filters)
	if err != nil {
		return nil, &domain.QueryError{Period: period, Err: err}
	}

	aggregates := e.aggregator.Aggregate(ctx, period, rows)
	for group, series := range aggregates {
		aggregates[group] = e.evaluator.Extend(series)
	}

	// A period with no rows at all still flows through as an empty group so
	// derived PEGs classify as calculation failures rather than silently
	// disappearing.
	if len(aggregates) == 0 {
		aggregates = domain.PeriodAggregates{
			domain.GroupKey{}: e.evaluator.Extend(domain.PegSeries{}),
		}
	}

	return aggregates, nil
}
