package domain

import (
	"fmt"
	"math"
	"time"
)

// Period identifies one of the two comparison windows.
type Period string

const (
	PeriodN1 Period = "n-1"
	PeriodN  Period = "n"
)

// TimeRange is a half-open analysis window [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

func (tr TimeRange) String() string {
	return fmt.Sprintf("%s ~ %s",
		tr.Start.Format("2006-01-02 15:04:05 -07:00"),
		tr.End.Format("2006-01-02 15:04:05 -07:00"))
}

// GroupingScope controls which identity fields participate in aggregation keys.
type GroupingScope string

const (
	// ScopePerCell keeps ne/cellid/host in the grouping key.
	ScopePerCell GroupingScope = "per-cell"
	// ScopeIntegrated collapses all cells into a single network-wide series.
	ScopeIntegrated GroupingScope = "integrated"
)

// GroupKey is the identity part of an aggregate key. Under ScopeIntegrated
// it is the zero value for every row.
type GroupKey struct {
	NE     string
	CellID string
	Host   string
}

func (g GroupKey) IsZero() bool {
	return g == GroupKey{}
}

func (g GroupKey) Label() string {
	if g.IsZero() {
		return ""
	}
	if g.Host != "" {
		return fmt.Sprintf("%s/%s@%s", g.NE, g.CellID, g.Host)
	}
	return fmt.Sprintf("%s/%s", g.NE, g.CellID)
}

// PegValue is a counter aggregate for one period. Missing marks "no data
// observed", which is distinct from a computed value of exactly zero.
// Failure is set when a derived formula could not produce a number; such a
// value is also Missing.
type PegValue struct {
	Value   float64
	Missing bool
	Failure string
}

func NumberValue(v float64) PegValue {
	return PegValue{Value: v}
}

func MissingValue() PegValue {
	return PegValue{Missing: true}
}

func FailedValue(reason string) PegValue {
	return PegValue{Missing: true, Failure: reason}
}

// IsNumber reports whether the value holds a usable finite number.
func (v PegValue) IsNumber() bool {
	return !v.Missing && !math.IsNaN(v.Value) && !math.IsInf(v.Value, 0)
}

func (v PegValue) IsCalcFailure() bool {
	return v.Failure != ""
}

func (v PegValue) String() string {
	if v.IsCalcFailure() {
		return fmt.Sprintf("failed (%s)", v.Failure)
	}
	if v.Missing {
		return "missing"
	}
	return fmt.Sprintf("%g", v.Value)
}

// PegSeries maps PEG name to its aggregate value for one group and period.
type PegSeries map[string]PegValue

// PeriodAggregates holds every group's series for one period.
type PeriodAggregates map[GroupKey]PegSeries

// Groups returns the union-friendly list of group keys, unordered.
func (pa PeriodAggregates) Groups() []GroupKey {
	keys := make([]GroupKey, 0, len(pa))
	for k := range pa {
		keys = append(keys, k)
	}
	return keys
}

// DerivedPeg is a user-supplied composite metric over base PEG names.
type DerivedPeg struct {
	Name    string
	Formula string
}
