package binning

import (
	"stablebin/domain/core"
)

// WoEEntry is one row of the weight-of-evidence transform table.
type WoEEntry struct {
	BinIndex      int     `json:"bin_index"`
	Label         string  `json:"label"`
	EventShare    float64 `json:"event_share"`
	NonEventShare float64 `json:"non_event_share"`
	WoE           float64 `json:"woe"`
}

// WoETable maps final bins to ln(event_share/nonevent_share), consumed by
// downstream feature transformation.
type WoETable struct {
	Feature core.FeatureKey `json:"feature"`
	Entries []WoEEntry      `json:"entries"`
	IV      float64         `json:"iv"`
}

// Transform substitutes an observation's bin with its WoE value.
func (t *WoETable) Transform(binIndex int) (float64, bool) {
	if binIndex < 0 || binIndex >= len(t.Entries) {
		return 0, false
	}
	return t.Entries[binIndex].WoE, true
}

// Apply maps raw observations through a bin set onto WoE values.
func (t *WoETable) Apply(binset *BinSet, obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		idx := binset.Assign(o)
		if idx < 0 {
			idx = binset.Len() - 1
		}
		if woe, ok := t.Transform(idx); ok {
			out[i] = woe
		}
	}
	return out
}
