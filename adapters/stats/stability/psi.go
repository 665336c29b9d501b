package stability

import (
	"math"

	domstab "stablebin/domain/stability"
)

// scorePSI computes the population stability index of every non-reference
// cohort against the reference cohort:
//
//	PSI = sum_i (p_i - p_ref_i) * ln(p_i / p_ref_i)
//
// over population shares p per bin. Both the mean and the max over cohorts are
// recorded; the mean feeds the composite score. Returns the number of epsilon
// substitutions applied.
func (s *Scorer) scorePSI(table *domstab.CohortTable, refIdx int, m *domstab.Metrics) int {
	refShares, subs := s.shares(table, refIdx)

	var sum, max float64
	var scored int
	for c := range table.Cohorts {
		if c == refIdx {
			continue
		}
		shares, n := s.shares(table, c)
		subs += n

		var psi float64
		for b := 0; b < table.NumBins; b++ {
			psi += (shares[b] - refShares[b]) * math.Log(shares[b]/refShares[b])
		}
		m.PSIByCohort[table.Cohorts[c]] = psi
		sum += psi
		if psi > max {
			max = psi
		}
		scored++
	}

	if scored > 0 {
		m.PSIMean = sum / float64(scored)
		m.PSIMax = max
	}
	return subs
}

// shares returns a cohort's per-bin population shares with zero shares floored
// at Epsilon, counting each substitution.
func (s *Scorer) shares(table *domstab.CohortTable, cohort int) ([]float64, int) {
	total := table.CohortTotal(cohort)
	shares := make([]float64, table.NumBins)
	subs := 0
	for b := 0; b < table.NumBins; b++ {
		var share float64
		if total > 0 {
			share = float64(table.Cell(b, cohort).Count) / float64(total)
		}
		if share < s.Epsilon {
			share = s.Epsilon
			subs++
		}
		shares[b] = share
	}
	return shares, subs
}
