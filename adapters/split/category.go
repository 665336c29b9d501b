package split

import (
	"sort"

	"stablebin/domain/binning"
	"stablebin/domain/core"
)

// RateOrdered groups categories by ascending event rate into at most maxBins
// contiguous groups of roughly equal population, so refinement sees an ordered
// categorical partition the same way it sees numeric intervals.
type RateOrdered struct{}

// NewRateOrdered creates a rate-ordered category grouper.
func NewRateOrdered() *RateOrdered {
	return &RateOrdered{}
}

// Name identifies the grouper in manifests.
func (g *RateOrdered) Name() string { return "rate_ordered" }

// Group orders categories by event rate (category name breaks ties, for
// deterministic output) and packs them into maxBins groups.
func (g *RateOrdered) Group(feature core.FeatureKey, categories []string, labels []int, maxBins int) (*binning.BinSet, error) {
	if len(categories) == 0 {
		return nil, core.NewInsufficientDataError(feature.String(), 0)
	}
	if len(categories) != len(labels) {
		return nil, core.NewConfigError("labels", "must match categories row for row")
	}
	if maxBins < 1 {
		return nil, core.NewConfigError("max_bins", "must be at least 1")
	}

	type tally struct {
		name   string
		count  int
		events int
	}
	byName := make(map[string]*tally)
	for i, c := range categories {
		t, ok := byName[c]
		if !ok {
			t = &tally{name: c}
			byName[c] = t
		}
		t.count++
		t.events += labels[i]
	}

	ordered := make([]*tally, 0, len(byName))
	for _, t := range byName {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ri := float64(ordered[i].events) / float64(ordered[i].count)
		rj := float64(ordered[j].events) / float64(ordered[j].count)
		if ri != rj {
			return ri < rj
		}
		return ordered[i].name < ordered[j].name
	})

	groups := maxBins
	if groups > len(ordered) {
		groups = len(ordered)
	}

	// Pack rate-ordered categories into groups of balanced population.
	total := len(categories)
	target := float64(total) / float64(groups)
	out := make([][]string, 0, groups)
	current := []string{}
	accumulated := 0
	for i, t := range ordered {
		current = append(current, t.name)
		accumulated += t.count
		remainingGroups := groups - len(out) - 1
		remainingCats := len(ordered) - i - 1
		if (float64(accumulated) >= target*float64(len(out)+1) || remainingCats == remainingGroups) &&
			remainingGroups > 0 {
			out = append(out, current)
			current = []string{}
		}
	}
	if len(current) > 0 {
		out = append(out, current)
	}

	return binning.FromCategoryGroups(feature, out)
}
