package binning

import (
	"fmt"
	"math"
	"sort"

	"stablebin/domain/core"
)

// FeatureKind distinguishes numeric interval bins from category groups.
type FeatureKind string

const (
	KindNumeric     FeatureKind = "numeric"
	KindCategorical FeatureKind = "categorical"
)

// BinSet is the ordered bin sequence for one feature at one refinement step.
// It is owned by a single refinement run; derived views (cohort tables,
// metrics) are recomputed from it, never mutated independently.
type BinSet struct {
	Feature core.FeatureKey `json:"feature"`
	Kind    FeatureKind     `json:"kind"`
	Bins    []Bin           `json:"bins"`

	catIndex map[string]int // category -> bin index, rebuilt on mutation
}

// FromBoundaries builds a numeric BinSet from interior cut points. n cuts
// produce n+1 bins covering (-inf, +inf); cuts are deduplicated and sorted.
func FromBoundaries(feature core.FeatureKey, cuts []float64) (*BinSet, error) {
	sorted := append([]float64(nil), cuts...)
	sort.Float64s(sorted)
	dedup := sorted[:0]
	for i, c := range sorted {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: cut %d is not finite", core.ErrInvalidPartition, i)
		}
		if len(dedup) == 0 || c != dedup[len(dedup)-1] {
			dedup = append(dedup, c)
		}
	}

	bins := make([]Bin, len(dedup)+1)
	for i := range bins {
		lower, upper := math.Inf(-1), math.Inf(1)
		if i > 0 {
			lower = dedup[i-1]
		}
		if i < len(dedup) {
			upper = dedup[i]
		}
		bins[i] = Bin{Index: i, Lower: lower, Upper: upper}
	}
	return &BinSet{Feature: feature, Kind: KindNumeric, Bins: bins}, nil
}

// FromCategoryGroups builds a categorical BinSet from ordered category groups.
func FromCategoryGroups(feature core.FeatureKey, groups [][]string) (*BinSet, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no category groups", core.ErrInvalidPartition)
	}
	seen := make(map[string]bool)
	bins := make([]Bin, len(groups))
	for i, group := range groups {
		if len(group) == 0 {
			return nil, fmt.Errorf("%w: empty category group %d", core.ErrInvalidPartition, i)
		}
		for _, c := range group {
			if seen[c] {
				return nil, fmt.Errorf("%w: category %q appears in more than one group", core.ErrInvalidPartition, c)
			}
			seen[c] = true
		}
		cats := append([]string(nil), group...)
		sort.Strings(cats)
		bins[i] = Bin{Index: i, Categories: cats}
	}
	s := &BinSet{Feature: feature, Kind: KindCategorical, Bins: bins}
	s.rebuildCatIndex()
	return s, nil
}

func (s *BinSet) rebuildCatIndex() {
	if s.Kind != KindCategorical {
		return
	}
	s.catIndex = make(map[string]int)
	for i, b := range s.Bins {
		for _, c := range b.Categories {
			s.catIndex[c] = i
		}
	}
}

// Len returns the number of bins.
func (s *BinSet) Len() int {
	return len(s.Bins)
}

// Total returns the total observation count across bins.
func (s *BinSet) Total() int {
	total := 0
	for _, b := range s.Bins {
		total += b.Count
	}
	return total
}

// TotalEvents returns the total event count across bins.
func (s *BinSet) TotalEvents() int {
	total := 0
	for _, b := range s.Bins {
		total += b.Events
	}
	return total
}

// Assign returns the ordinal of the bin an observation falls into, or -1 for
// an unknown category.
func (s *BinSet) Assign(o Observation) int {
	if s.Kind == KindCategorical {
		if s.catIndex == nil {
			s.rebuildCatIndex()
		}
		if idx, ok := s.catIndex[o.Category]; ok {
			return idx
		}
		return -1
	}
	// Bins partition (-inf, +inf); first bin whose upper bound exceeds the
	// value wins, so intervals are [lower, upper).
	idx := sort.Search(len(s.Bins), func(i int) bool {
		return o.Value < s.Bins[i].Upper
	})
	if idx == len(s.Bins) {
		idx = len(s.Bins) - 1 // +inf upper bound, only reachable on NaN input
	}
	return idx
}

// Populate recomputes every bin's aggregates from the observation set.
// Unknown categories are counted into the last bin so the partition stays
// exhaustive over the observed domain.
func (s *BinSet) Populate(obs []Observation) {
	for i := range s.Bins {
		s.Bins[i].Count = 0
		s.Bins[i].Events = 0
	}
	for _, o := range obs {
		idx := s.Assign(o)
		if idx < 0 {
			idx = len(s.Bins) - 1
		}
		s.Bins[idx].Count++
		s.Bins[idx].Events += o.Label
	}
}

// MergeAdjacent merges bins i and i+1 in place and reindexes.
func (s *BinSet) MergeAdjacent(i int) error {
	if i < 0 || i+1 >= len(s.Bins) {
		return fmt.Errorf("merge index %d out of range for %d bins", i, len(s.Bins))
	}
	s.Bins[i] = merged(s.Bins[i], s.Bins[i+1])
	s.Bins = append(s.Bins[:i+1], s.Bins[i+2:]...)
	for j := range s.Bins {
		s.Bins[j].Index = j
	}
	s.rebuildCatIndex()
	return nil
}

// Clone returns a deep copy so a refinement run can own its working set.
func (s *BinSet) Clone() *BinSet {
	out := &BinSet{Feature: s.Feature, Kind: s.Kind, Bins: make([]Bin, len(s.Bins))}
	for i, b := range s.Bins {
		copied := b
		if b.Categories != nil {
			copied.Categories = append([]string(nil), b.Categories...)
		}
		out.Bins[i] = copied
	}
	out.rebuildCatIndex()
	return out
}

// EventRates returns the per-bin event rates in ordinal order.
func (s *BinSet) EventRates() []float64 {
	rates := make([]float64, len(s.Bins))
	for i, b := range s.Bins {
		rates[i] = b.EventRate()
	}
	return rates
}

// Validate checks the partition invariants: at least one bin, contiguous
// numeric intervals from -inf to +inf, strictly increasing boundaries.
func (s *BinSet) Validate() error {
	if len(s.Bins) == 0 {
		return fmt.Errorf("%w: empty bin set", core.ErrInvalidPartition)
	}
	if s.Kind == KindCategorical {
		return nil
	}
	if !math.IsInf(s.Bins[0].Lower, -1) {
		return fmt.Errorf("%w: first bin must start at -inf", core.ErrInvalidPartition)
	}
	if !math.IsInf(s.Bins[len(s.Bins)-1].Upper, 1) {
		return fmt.Errorf("%w: last bin must end at +inf", core.ErrInvalidPartition)
	}
	for i := 0; i < len(s.Bins); i++ {
		if s.Bins[i].Lower >= s.Bins[i].Upper {
			return fmt.Errorf("%w: bin %d has empty interval", core.ErrInvalidPartition, i)
		}
		if i > 0 && s.Bins[i].Lower != s.Bins[i-1].Upper {
			return fmt.Errorf("%w: gap between bins %d and %d", core.ErrInvalidPartition, i-1, i)
		}
	}
	return nil
}
