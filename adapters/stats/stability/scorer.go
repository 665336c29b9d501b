// Package stability computes the temporal-stability statistics of a bin set:
// PSI against a reference cohort, KS on the full aggregation, and the
// temporal separability of the bins' event-rate curves.
package stability

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"

	"stablebin/domain/core"
	domstab "stablebin/domain/stability"
)

// Scorer computes StabilityMetrics from an aggregated cohort table. Pure: no
// state beyond the epsilon floor, no side effects.
type Scorer struct {
	// Epsilon substitutes zero population shares before log ratios. The
	// substitution biases PSI for near-empty bins, so every application is
	// counted into the metrics record rather than hidden.
	Epsilon float64
}

// NewScorer creates a scorer with the documented 1e-4 floor.
func NewScorer() *Scorer {
	return &Scorer{Epsilon: 1e-4}
}

// Score computes the full stability record for one feature. reference selects
// the PSI reference cohort; empty means the earliest cohort.
//
// Fails with ErrInsufficientData if any bin has zero total population.
func (s *Scorer) Score(table *domstab.CohortTable, reference string) (*domstab.Metrics, error) {
	for b := 0; b < table.NumBins; b++ {
		if table.BinTotal(b) == 0 {
			return nil, core.NewInsufficientDataError(table.Feature.String(), b)
		}
	}
	if len(table.Cohorts) == 0 {
		return nil, core.NewInsufficientDataError(table.Feature.String(), 0)
	}

	refIdx := 0
	if reference != "" {
		idx, ok := table.CohortIndex(reference)
		if !ok {
			return nil, fmt.Errorf("reference cohort %q: %w", reference, core.ErrNotFound)
		}
		refIdx = idx
	}

	metrics := &domstab.Metrics{
		Feature:     table.Feature,
		Cohorts:     append([]string(nil), table.Cohorts...),
		PSIByCohort: make(map[string]float64),
	}

	substitutions := s.scorePSI(table, refIdx, metrics)
	metrics.EpsilonSubstitutions = substitutions
	metrics.KS = kolmogorovSmirnov(table)
	s.scoreSeparability(table, metrics)
	s.scoreDrift(table, metrics)

	if substitutions > 0 {
		metrics.Warnings = append(metrics.Warnings,
			fmt.Sprintf("psi: %d zero share(s) floored at %g", substitutions, s.Epsilon))
	}
	return metrics, nil
}

// scoreSeparability computes the mean pairwise distance between different
// bins' event-rate time series: average absolute rate difference, cohort by
// cohort, averaged over all bin pairs. Symmetric and pairwise, so the score is
// invariant to cohort relabeling that preserves temporal order.
func (s *Scorer) scoreSeparability(table *domstab.CohortTable, m *domstab.Metrics) {
	numBins := table.NumBins
	series := make([][]float64, numBins)
	for b := 0; b < numBins; b++ {
		series[b] = table.RateSeries(b)
	}
	m.RatesByBin = series

	if numBins < 2 || len(table.Cohorts) < 2 {
		// A separability of rate curves needs both multiple bins and multiple
		// cohorts; anything less is reported as 0, not an error.
		m.Separability = 0
		return
	}

	var sum float64
	var pairs int
	for i := 0; i < numBins; i++ {
		for j := i + 1; j < numBins; j++ {
			var dist float64
			for c := range table.Cohorts {
				dist += abs(series[i][c] - series[j][c])
			}
			sum += dist / float64(len(table.Cohorts))
			pairs++
		}
	}
	m.Separability = sum / float64(pairs)
}

// scoreDrift fills the per-bin std-dev/range summary of the rate series.
func (s *Scorer) scoreDrift(table *domstab.CohortTable, m *domstab.Metrics) {
	m.Drift = make([]domstab.BinDrift, table.NumBins)
	for b := 0; b < table.NumBins; b++ {
		series := m.RatesByBin[b]
		drift := domstab.BinDrift{BinIndex: b}
		if len(series) > 1 {
			if sd, err := mstats.StandardDeviation(series); err == nil {
				drift.StdDev = sd
			}
			lo, errLo := mstats.Min(series)
			hi, errHi := mstats.Max(series)
			if errLo == nil && errHi == nil {
				drift.Range = hi - lo
			}
		}
		m.Drift[b] = drift
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
