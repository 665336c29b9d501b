package cohort

import (
	"stablebin/domain/binning"
	"stablebin/domain/core"
	"stablebin/domain/stability"
)

// Aggregator groups observations by (bin, cohort). It is a pure function over
// its inputs: the table is rebuilt in full on every call, never patched, so a
// changed BinSet can never leave stale cells behind.
type Aggregator struct{}

// New creates a cohort aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Aggregate produces the zero-filled (bin, cohort) tally table for a bin set.
// Every pair gets a cell, including pairs with no observations, so downstream
// ratio code can flag undefined rates instead of skipping periods.
//
// When requireCohorts is set (stability checking requested), fewer than two
// distinct cohorts is an error: stability needs variation across time.
func (a *Aggregator) Aggregate(binset *binning.BinSet, obs []binning.Observation, requireCohorts bool) (*stability.CohortTable, error) {
	distinct := make(map[string]bool)
	for _, o := range obs {
		distinct[o.Cohort] = true
	}
	if requireCohorts && len(distinct) < 2 {
		return nil, core.NewEmptyCohortError(binset.Feature.String(), len(distinct))
	}

	cohorts := make([]string, 0, len(distinct))
	for id := range distinct {
		cohorts = append(cohorts, id)
	}

	table := stability.NewCohortTable(binset.Feature, binset.Len(), cohorts)
	for _, o := range obs {
		binIdx := binset.Assign(o)
		if binIdx < 0 {
			binIdx = binset.Len() - 1
		}
		cohortIdx, ok := table.CohortIndex(o.Cohort)
		if !ok {
			continue // unreachable: cohorts were collected from obs
		}
		table.Add(binIdx, cohortIdx, o.Label)
	}
	return table, nil
}
