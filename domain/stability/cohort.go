package stability

import (
	"sort"

	"stablebin/domain/core"
)

// Cell holds the tallies for one (bin, cohort) pair. Cells exist for every
// pair, including empty ones, so downstream ratio code can see an undefined
// rate instead of a silently missing period.
type Cell struct {
	Count  int `json:"count"`
	Events int `json:"events"`
}

// EventRate returns the cell's event rate and whether it is defined.
func (c Cell) EventRate() (float64, bool) {
	if c.Count == 0 {
		return 0, false
	}
	return float64(c.Events) / float64(c.Count), true
}

// CohortTable is a flat (bin, cohort)-indexed tally arena for one feature.
// Cohorts are held in temporal order; bin ordinals follow the BinSet.
type CohortTable struct {
	Feature core.FeatureKey
	Cohorts []string // sorted ascending, index is the cohort ordinal
	NumBins int

	cells []Cell // bin-major: cells[bin*len(Cohorts)+cohort]
}

// NewCohortTable allocates a zero-filled table. Cohort identifiers are sorted
// so relabeling that preserves relative temporal order does not change any
// downstream statistic.
func NewCohortTable(feature core.FeatureKey, numBins int, cohorts []string) *CohortTable {
	ordered := append([]string(nil), cohorts...)
	sort.Strings(ordered)
	return &CohortTable{
		Feature: feature,
		Cohorts: ordered,
		NumBins: numBins,
		cells:   make([]Cell, numBins*len(ordered)),
	}
}

// CohortIndex returns the ordinal of a cohort identifier.
func (t *CohortTable) CohortIndex(id string) (int, bool) {
	idx := sort.SearchStrings(t.Cohorts, id)
	if idx < len(t.Cohorts) && t.Cohorts[idx] == id {
		return idx, true
	}
	return 0, false
}

// Add tallies one observation into its (bin, cohort) cell.
func (t *CohortTable) Add(bin, cohort, label int) {
	cell := &t.cells[bin*len(t.Cohorts)+cohort]
	cell.Count++
	cell.Events += label
}

// Cell returns the tallies for a (bin, cohort) pair.
func (t *CohortTable) Cell(bin, cohort int) Cell {
	return t.cells[bin*len(t.Cohorts)+cohort]
}

// BinTotal sums a bin's population across cohorts.
func (t *CohortTable) BinTotal(bin int) int {
	total := 0
	for c := 0; c < len(t.Cohorts); c++ {
		total += t.Cell(bin, c).Count
	}
	return total
}

// BinEvents sums a bin's events across cohorts.
func (t *CohortTable) BinEvents(bin int) int {
	total := 0
	for c := 0; c < len(t.Cohorts); c++ {
		total += t.Cell(bin, c).Events
	}
	return total
}

// CohortTotal sums a cohort's population across bins.
func (t *CohortTable) CohortTotal(cohort int) int {
	total := 0
	for b := 0; b < t.NumBins; b++ {
		total += t.Cell(b, cohort).Count
	}
	return total
}

// RateSeries returns a bin's event-rate time series across cohorts. Undefined
// cells (no population in that period) are reported as zero, matching the
// zero-filled pivot the scoring formulas expect.
func (t *CohortTable) RateSeries(bin int) []float64 {
	series := make([]float64, len(t.Cohorts))
	for c := range t.Cohorts {
		if rate, ok := t.Cell(bin, c).EventRate(); ok {
			series[c] = rate
		}
	}
	return series
}
