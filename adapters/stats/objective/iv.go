package objective

import (
	"math"

	"stablebin/domain/binning"
	"stablebin/domain/core"
)

// WoETable builds the weight-of-evidence table for a populated bin set:
// WoE_i = ln(event_share_i / nonevent_share_i), with zero shares floored at
// epsilon (same guard as PSI). Returns the table and the substitution count.
//
// IV is accumulated alongside as sum((event_share - nonevent_share) * WoE),
// so it is exactly 0 when the shares are identical across bins and
// non-negative otherwise.
func WoETable(binset *binning.BinSet, epsilon float64) (*binning.WoETable, int, error) {
	totalEvents := binset.TotalEvents()
	totalNonEvents := binset.Total() - totalEvents
	if binset.Total() == 0 {
		return nil, 0, core.NewInsufficientDataError(binset.Feature.String(), 0)
	}

	table := &binning.WoETable{
		Feature: binset.Feature,
		Entries: make([]binning.WoEEntry, binset.Len()),
	}

	subs := 0
	floor := func(share float64) float64 {
		if share < epsilon {
			subs++
			return epsilon
		}
		return share
	}

	for i, b := range binset.Bins {
		var eventShare, nonEventShare float64
		if totalEvents > 0 {
			eventShare = float64(b.Events) / float64(totalEvents)
		}
		if totalNonEvents > 0 {
			nonEventShare = float64(b.NonEvents()) / float64(totalNonEvents)
		}

		flooredEvent := floor(eventShare)
		flooredNonEvent := floor(nonEventShare)
		woe := math.Log(flooredEvent / flooredNonEvent)

		table.Entries[i] = binning.WoEEntry{
			BinIndex:      i,
			Label:         b.Label(),
			EventShare:    eventShare,
			NonEventShare: nonEventShare,
			WoE:           woe,
		}
		table.IV += (flooredEvent - flooredNonEvent) * woe
	}
	return table, subs, nil
}
