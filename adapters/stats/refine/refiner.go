// Package refine adjusts a candidate bin set until its event rates are
// monotone and adjacent bins are separated by a minimum event-rate gap.
//
// The merge strategy is greedy: the leftmost violating pair merges first.
// That guarantees constraint satisfaction and deterministic, auditable output,
// not maximal information retention. A dynamic-programming merge minimizing IV
// loss would be a stronger alternative behind the same signature.
package refine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"stablebin/adapters/stats/cohort"
	"stablebin/domain/binning"
	"stablebin/domain/core"
	domstab "stablebin/domain/stability"
)

// Refiner is the monotonic bin refinement engine.
type Refiner struct {
	agg *cohort.Aggregator
}

// New creates a refiner backed by a cohort aggregator.
func New(agg *cohort.Aggregator) *Refiner {
	return &Refiner{agg: agg}
}

// Result is the terminal state of one refinement run.
type Result struct {
	BinSet    *binning.BinSet
	Table     *domstab.CohortTable // aggregation of the terminal bin set
	Direction binning.Direction    // resolved direction (never auto)
	Merges    int
	// Degenerate marks the single-bin terminal state: a feature with no
	// signal still produces a usable, if trivial, output.
	Degenerate bool
	Warnings   []string
}

// Run refines the initial bin set over the observations until the
// monotonicity, minimum-gap, and minimum-size constraints all hold, or a
// single bin remains. The input bin set is not mutated; the refiner owns a
// clone for the whole run.
//
// Each merge strictly reduces the bin count, bounded below by 1, so the loop
// always terminates. ErrUnsatisfiableConstraint is returned only when the
// hard constraints are contradictory before any merging can help.
func (r *Refiner) Run(initial *binning.BinSet, obs []binning.Observation, cfg binning.Config) (*Result, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, core.NewInsufficientDataError(initial.Feature.String(), 0)
	}
	if cfg.MinBinSize > 1.0 {
		return nil, core.NewUnsatisfiableConstraintError(
			fmt.Sprintf("min_bin_size %.4g exceeds the whole population", cfg.MinBinSize))
	}
	if cfg.MinEventRateDiff >= 1.0 {
		return nil, core.NewUnsatisfiableConstraintError(
			fmt.Sprintf("min_event_rate_diff %.4g cannot be met by event rates in [0,1]", cfg.MinEventRateDiff))
	}

	binset := initial.Clone()
	minCount := int(math.Ceil(cfg.MinBinSize * float64(len(obs))))

	table, err := r.aggregate(binset, obs)
	if err != nil {
		return nil, err
	}

	direction := cfg.Monotonic
	if direction == binning.DirectionAuto || direction == "" {
		direction = detectDirection(binset)
	}

	result := &Result{Direction: direction}
	for binset.Len() > 1 {
		idx := firstViolation(binset, direction, cfg.MinEventRateDiff, minCount)
		if idx < 0 {
			break
		}
		if err := binset.MergeAdjacent(idx); err != nil {
			return nil, err
		}
		result.Merges++
		// Full re-aggregation after every merge; derived views are never
		// patched incrementally.
		table, err = r.aggregate(binset, obs)
		if err != nil {
			return nil, err
		}
	}

	if binset.Len() == 1 {
		result.Degenerate = true
		result.Warnings = append(result.Warnings,
			"refinement collapsed to a single bin: feature carries no separable signal under the configured constraints")
	}

	result.BinSet = binset
	result.Table = table
	return result, nil
}

// aggregate rebuilds the cohort table and the bin aggregates for the current
// bin set.
func (r *Refiner) aggregate(binset *binning.BinSet, obs []binning.Observation) (*domstab.CohortTable, error) {
	table, err := r.agg.Aggregate(binset, obs, false)
	if err != nil {
		return nil, err
	}
	for b := range binset.Bins {
		binset.Bins[b].Count = table.BinTotal(b)
		binset.Bins[b].Events = table.BinEvents(b)
	}
	return table, nil
}

// firstViolation returns the next adjacent pair to merge, or -1 when the bin
// set is terminal. Monotonicity violations resolve before the size floor,
// which resolves before the minimum-gap check; within each class the leftmost
// pair merges first. The fixed precedence plus leftmost tie-break keeps the
// output independent of iteration-order accidents.
func firstViolation(binset *binning.BinSet, direction binning.Direction, minGap float64, minCount int) int {
	for i := 0; i+1 < binset.Len(); i++ {
		diff := binset.Bins[i+1].EventRate() - binset.Bins[i].EventRate()
		if direction == binning.DirectionIncreasing && diff < 0 {
			return i
		}
		if direction == binning.DirectionDecreasing && diff > 0 {
			return i
		}
	}
	for i := 0; i+1 < binset.Len(); i++ {
		if binset.Bins[i].Count < minCount || binset.Bins[i+1].Count < minCount {
			return i
		}
	}
	for i := 0; i+1 < binset.Len(); i++ {
		diff := binset.Bins[i+1].EventRate() - binset.Bins[i].EventRate()
		if math.Abs(diff) < minGap {
			return i
		}
	}
	return -1
}

// detectDirection infers the monotonic direction from the unconstrained
// correlation sign between bin ordinal and event rate.
func detectDirection(binset *binning.BinSet) binning.Direction {
	n := binset.Len()
	if n < 2 {
		return binning.DirectionIncreasing
	}
	ordinals := make([]float64, n)
	rates := make([]float64, n)
	for i, b := range binset.Bins {
		ordinals[i] = float64(i)
		rates[i] = b.EventRate()
	}
	corr := stat.Correlation(ordinals, rates, nil)
	if !math.IsNaN(corr) && corr < 0 {
		return binning.DirectionDecreasing
	}
	return binning.DirectionIncreasing
}
