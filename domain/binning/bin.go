package binning

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Bin is one ordered interval (numeric) or category group (categorical) with
// its derived aggregates. Aggregates are filled by Populate and summed on
// merge; they are never adjusted incrementally.
type Bin struct {
	Index      int      `json:"index"`
	Lower      float64  `json:"lower"` // -Inf on the first numeric bin
	Upper      float64  `json:"upper"` // +Inf on the last numeric bin
	Categories []string `json:"categories,omitempty"`
	Count      int      `json:"count"`
	Events     int      `json:"events"`
}

// EventRate returns events/count, or 0 for an empty bin.
func (b Bin) EventRate() float64 {
	if b.Count == 0 {
		return 0
	}
	return float64(b.Events) / float64(b.Count)
}

// NonEvents returns the non-event count.
func (b Bin) NonEvents() int {
	return b.Count - b.Events
}

// IsCategorical reports whether the bin groups categories rather than spanning
// a numeric interval.
func (b Bin) IsCategorical() bool {
	return len(b.Categories) > 0
}

// Label renders a human-readable bin label for summaries and reports.
func (b Bin) Label() string {
	if b.IsCategorical() {
		return "{" + strings.Join(b.Categories, ", ") + "}"
	}
	lower := "-inf"
	if !math.IsInf(b.Lower, -1) {
		lower = fmt.Sprintf("%.6g", b.Lower)
	}
	upper := "+inf"
	if !math.IsInf(b.Upper, 1) {
		upper = fmt.Sprintf("%.6g", b.Upper)
	}
	return fmt.Sprintf("[%s, %s)", lower, upper)
}

// merged returns the union of two adjacent bins: summed populations and the
// convex hull of the intervals (or the union of the category groups).
func merged(left, right Bin) Bin {
	out := Bin{
		Index:  left.Index,
		Lower:  left.Lower,
		Upper:  right.Upper,
		Count:  left.Count + right.Count,
		Events: left.Events + right.Events,
	}
	if left.IsCategorical() || right.IsCategorical() {
		cats := make([]string, 0, len(left.Categories)+len(right.Categories))
		cats = append(cats, left.Categories...)
		cats = append(cats, right.Categories...)
		sort.Strings(cats)
		out.Categories = cats
		out.Lower, out.Upper = 0, 0
	}
	return out
}
