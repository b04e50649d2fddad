package compare

import (
	"fmt"
	"sort"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

// largeDecreaseThreshold is the pct_change at or below which a finite-valued
// transition is flagged as a large decrease.
const largeDecreaseThreshold = -20.0

// Comparator merges two periods' extended aggregates and classifies every
// PEG's transition. Classification precedence is fixed; the first matching
// pattern wins, which is what resolves overlaps such as a calculation failure
// on a PEG that would otherwise read as a large decrease.
type Comparator struct {
	selected map[string]bool
}

// NewComparator creates a comparator. selectedPegs optionally restricts the
// comparison to a caller-specified subset; empty means every PEG in the union
// of both periods.
func NewComparator(selectedPegs []string) *Comparator {
	var selected map[string]bool
	if len(selectedPegs) > 0 {
		selected = make(map[string]bool, len(selectedPegs))
		for _, p := range selectedPegs {
			selected[p] = true
		}
	}
	return &Comparator{selected: selected}
}

// Compare produces one ComparisonRecord per (group, peg) in the union of the
// two periods, sorted by group label then PEG name, plus structured warnings
// for surge, collapse and large-decrease transitions.
func (c *Comparator) Compare(n1, n domain.PeriodAggregates) ([]domain.ComparisonRecord, []domain.Warning) {
	groups := unionGroups(n1, n)

	var records []domain.ComparisonRecord
	for _, g := range groups {
		for _, peg := range c.unionPegs(n1[g], n[g]) {
			records = append(records, c.compareOne(g, peg, lookup(n1[g], peg), lookup(n[g], peg)))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Group.Label() != records[j].Group.Label() {
			return records[i].Group.Label() < records[j].Group.Label()
		}
		return records[i].Peg < records[j].Peg
	})

	var warnings []domain.Warning
	for _, r := range records {
		if w, ok := warningFor(r); ok {
			warnings = append(warnings, w)
		}
	}
	return records, warnings
}

func (c *Comparator) compareOne(g domain.GroupKey, peg string, v1, vN domain.PegValue) domain.ComparisonRecord {
	r := domain.ComparisonRecord{
		Peg:     peg,
		Group:   g,
		ValueN1: v1,
		ValueN:  vN,
	}

	if v1.IsNumber() && vN.IsNumber() {
		delta := vN.Value - v1.Value
		r.Delta = &delta
		if v1.Value != 0 {
			pct := delta / v1.Value * 100
			r.PctChange = &pct
		}
	}

	r.Pattern = classify(v1, vN, r.PctChange)
	return r
}

func classify(v1, vN domain.PegValue, pct *float64) domain.Pattern {
	switch {
	case v1.IsCalcFailure() || vN.IsCalcFailure():
		return domain.PatternCalculationFailed
	case !v1.IsNumber() && vN.IsNumber():
		return domain.PatternNewEmergence
	case v1.IsNumber() && !vN.IsNumber():
		return domain.PatternVanished
	case !v1.IsNumber() && !vN.IsNumber():
		return domain.PatternStable
	case v1.Value == 0 && vN.Value > 0:
		return domain.PatternSurge
	case v1.Value > 0 && vN.Value == 0:
		return domain.PatternCollapse
	case pct != nil && *pct <= largeDecreaseThreshold:
		return domain.PatternLargeDecrease
	default:
		return domain.PatternStable
	}
}

func warningFor(r domain.ComparisonRecord) (domain.Warning, bool) {
	var msg string
	switch r.Pattern {
	case domain.PatternSurge:
		msg = fmt.Sprintf("%s surged from 0 to %g", r.Name(), r.ValueN.Value)
	case domain.PatternCollapse:
		msg = fmt.Sprintf("%s collapsed from %g to 0", r.Name(), r.ValueN1.Value)
	case domain.PatternLargeDecrease:
		msg = fmt.Sprintf("%s decreased %.1f%% (%g -> %g)",
			r.Name(), *r.PctChange, r.ValueN1.Value, r.ValueN.Value)
	default:
		return domain.Warning{}, false
	}
	return domain.Warning{
		Category: r.Pattern,
		Peg:      r.Peg,
		Group:    r.Group,
		Message:  msg,
	}, true
}

func (c *Comparator) unionPegs(a, b domain.PegSeries) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var pegs []string
	add := func(series domain.PegSeries) {
		for peg := range series {
			if seen[peg] {
				continue
			}
			if c.selected != nil && !c.selected[peg] {
				continue
			}
			seen[peg] = true
			pegs = append(pegs, peg)
		}
	}
	add(a)
	add(b)
	sort.Strings(pegs)
	return pegs
}

func unionGroups(a, b domain.PeriodAggregates) []domain.GroupKey {
	seen := make(map[domain.GroupKey]bool, len(a)+len(b))
	var groups []domain.GroupKey
	for _, pa := range []domain.PeriodAggregates{a, b} {
		for g := range pa {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Label() < groups[j].Label()
	})
	return groups
}

func lookup(series domain.PegSeries, peg string) domain.PegValue {
	if series == nil {
		return domain.MissingValue()
	}
	v, ok := series[peg]
	if !ok {
		return domain.MissingValue()
	}
	return v
}
