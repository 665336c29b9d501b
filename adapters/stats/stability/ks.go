package stability

import (
	domstab "stablebin/domain/stability"
)

// kolmogorovSmirnov is the maximum absolute difference between the cumulative
// event distribution and the cumulative non-event distribution across ordered
// bins, computed on the full aggregation (all cohorts pooled).
func kolmogorovSmirnov(table *domstab.CohortTable) float64 {
	var totalEvents, totalNonEvents int
	events := make([]int, table.NumBins)
	nonEvents := make([]int, table.NumBins)
	for b := 0; b < table.NumBins; b++ {
		e := table.BinEvents(b)
		n := table.BinTotal(b) - e
		events[b] = e
		nonEvents[b] = n
		totalEvents += e
		totalNonEvents += n
	}
	if totalEvents == 0 || totalNonEvents == 0 {
		return 0
	}

	var cumEvent, cumNonEvent, ks float64
	for b := 0; b < table.NumBins; b++ {
		cumEvent += float64(events[b]) / float64(totalEvents)
		cumNonEvent += float64(nonEvents[b]) / float64(totalNonEvents)
		if d := abs(cumEvent - cumNonEvent); d > ks {
			ks = d
		}
	}
	return ks
}
