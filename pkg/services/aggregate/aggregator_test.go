package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/peg-lens/pkg/models/domain"
	"github.com/de-tools/peg-lens/pkg/models/store"
)

func row(peg, value, ne, cell string) store.CounterRow {
	return store.CounterRow{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Peg:       peg,
		Value:     value,
		NE:        ne,
		CellID:    cell,
	}
}

func TestAggregator_Aggregate_ComputesMeanPerPeg(t *testing.T) {
	a := NewAggregator(domain.ScopeIntegrated)

	rows := []store.CounterRow{
		row("RRCSetupAtt", "100", "ne1", "c1"),
		row("RRCSetupAtt", "200", "ne1", "c2"),
		row("RRCSetupAtt", "300", "ne2", "c1"),
		row("DropCalls", "4", "ne1", "c1"),
	}

	got := a.Aggregate(context.Background(), domain.PeriodN, rows)

	require.Len(t, got, 1)
	series := got[domain.GroupKey{}]
	require.NotNil(t, series)
	assert.Equal(t, domain.NumberValue(200), series["RRCSetupAtt"])
	assert.Equal(t, domain.NumberValue(4), series["DropCalls"])
}

func TestAggregator_Aggregate_IsOrderIndependent(t *testing.T) {
	a := NewAggregator(domain.ScopeIntegrated)

	rows := []store.CounterRow{
		row("A", "1", "ne1", "c1"),
		row("A", "2", "ne1", "c1"),
		row("A", "6", "ne1", "c1"),
		row("B", "10", "ne1", "c1"),
	}
	reversed := []store.CounterRow{rows[3], rows[2], rows[1], rows[0]}

	first := a.Aggregate(context.Background(), domain.PeriodN1, rows)
	second := a.Aggregate(context.Background(), domain.PeriodN1, reversed)

	assert.Equal(t, first, second)
}

func TestAggregator_Aggregate_SkipsNonNumericValues(t *testing.T) {
	a := NewAggregator(domain.ScopeIntegrated)

	rows := []store.CounterRow{
		row("A", "10", "ne1", "c1"),
		row("A", "NIL", "ne1", "c1"),
		row("A", "", "ne1", "c1"),
		row("A", "20", "ne1", "c1"),
	}

	got := a.Aggregate(context.Background(), domain.PeriodN, rows)

	series := got[domain.GroupKey{}]
	require.NotNil(t, series)
	// Mean over the two parsable rows only.
	assert.Equal(t, domain.NumberValue(15), series["A"])
}

func TestAggregator_Aggregate_PerCellScopeKeepsIdentity(t *testing.T) {
	a := NewAggregator(domain.ScopePerCell)

	rows := []store.CounterRow{
		row("A", "10", "ne1", "c1"),
		row("A", "30", "ne1", "c2"),
	}

	got := a.Aggregate(context.Background(), domain.PeriodN, rows)

	require.Len(t, got, 2)
	assert.Equal(t, domain.NumberValue(10), got[domain.GroupKey{NE: "ne1", CellID: "c1"}]["A"])
	assert.Equal(t, domain.NumberValue(30), got[domain.GroupKey{NE: "ne1", CellID: "c2"}]["A"])
}

func TestAggregator_Aggregate_ZeroIsNotMissing(t *testing.T) {
	a := NewAggregator(domain.ScopeIntegrated)

	got := a.Aggregate(context.Background(), domain.PeriodN, []store.CounterRow{
		row("A", "0", "ne1", "c1"),
	})

	v := got[domain.GroupKey{}]["A"]
	assert.True(t, v.IsNumber())
	assert.False(t, v.Missing)
	assert.Equal(t, 0.0, v.Value)
}
