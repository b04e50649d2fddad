package domain

// Pattern is a behavioral classification of one PEG's transition between the
// N-1 and N periods. The constants are listed in precedence order; the
// comparator applies the first one that matches.
type Pattern string

const (
	PatternCalculationFailed Pattern = "calculation_failed"
	PatternNewEmergence      Pattern = "new_emergence"
	PatternVanished          Pattern = "vanished"
	PatternSurge             Pattern = "surge"
	PatternCollapse          Pattern = "collapse"
	PatternLargeDecrease     Pattern = "large_decrease"
	PatternStable            Pattern = "stable"
)

// ComparisonRecord is the period-over-period result for a single PEG within
// one group. Delta and PctChange are nil when undefined (a period missing, or
// a zero N-1 value for PctChange).
type ComparisonRecord struct {
	Peg       string
	Group     GroupKey
	ValueN1   PegValue
	ValueN    PegValue
	Delta     *float64
	PctChange *float64
	Pattern   Pattern
}

// Name returns the display identity of the record, qualified with the group
// label under per-cell scope.
func (r ComparisonRecord) Name() string {
	if r.Group.IsZero() {
		return r.Peg
	}
	return r.Group.Label() + " " + r.Peg
}

// Warning is a structured alert emitted for surge, collapse and
// large-decrease classifications.
type Warning struct {
	Category Pattern
	Peg      string
	Group    GroupKey
	Message  string
}
