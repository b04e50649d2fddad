package aggregate

import (
	"context"
	"strconv"
	"strings"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/models/store"
	"github.com/rs/zerolog"
)

// Aggregator reduces raw counter rows to per-PEG means for one period.
type Aggregator struct {
	scope domain.GroupingScope
}

func NewAggregator(scope domain.GroupingScope) *Aggregator {
	return &Aggregator{scope: scope}
}

type bucket struct {
	sum   float64
	count int
}

// Aggregate computes the arithmetic mean of every (group, peg) bucket found
// in rows. Rows whose value does not parse as a number are skipped; the skip
// count is logged. The result is a pure function of the row multiset.
func (a *Aggregator) Aggregate(ctx context.Context, period domain.Period, rows []store.CounterRow) domain.PeriodAggregates {
	logger := zerolog.Ctx(ctx)

	buckets := make(map[domain.GroupKey]map[string]*bucket)
	skipped := 0

	for _, row := range rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64)
		if err != nil {
			skipped++
			continue
		}

		key := a.groupKey(row)
		series, ok := buckets[key]
		if !ok {
			series = make(map[string]*bucket)
			buckets[key] = series
		}
		b, ok := series[row.Peg]
		if !ok {
			b = &bucket{}
			series[row.Peg] = b
		}
		b.sum += v
		b.count++
	}

	if skipped > 0 {
		logger.Warn().
			Str("period", string(period)).
			Int("skipped_rows", skipped).
			Msg("ignored counter rows with non-numeric values")
	}

	out := make(domain.PeriodAggregates, len(buckets))
	for key, series := range buckets {
		agg := make(domain.PegSeries, len(series))
		for peg, b := range series {
			agg[peg] = domain.NumberValue(b.sum / float64(b.count))
		}
		out[key] = agg
	}
	return out
}

func (a *Aggregator) groupKey(row store.CounterRow) domain.GroupKey {
	if a.scope == domain.ScopePerCell {
		return domain.GroupKey{NE: row.NE, CellID: row.CellID, Host: row.Host}
	}
	return domain.GroupKey{}
}
