package split

import (
	mstats "github.com/montanaflynn/stats"

	"stablebin/domain/binning"
	"stablebin/domain/core"
)

// EqualWidth generates cuts at equal value intervals between the observed min
// and max.
type EqualWidth struct{}

// NewEqualWidth creates an equal-width split generator.
func NewEqualWidth() *EqualWidth {
	return &EqualWidth{}
}

// Name identifies the generator in manifests.
func (w *EqualWidth) Name() string { return "equal_width" }

// Generate places maxBins-1 interior cuts evenly across the observed range.
func (w *EqualWidth) Generate(feature core.FeatureKey, values []float64, maxBins int) (*binning.BinSet, error) {
	if len(values) == 0 {
		return nil, core.NewInsufficientDataError(feature.String(), 0)
	}
	if maxBins < 1 {
		return nil, core.NewConfigError("max_bins", "must be at least 1")
	}

	lo, err := mstats.Min(values)
	if err != nil {
		return nil, err
	}
	hi, err := mstats.Max(values)
	if err != nil {
		return nil, err
	}
	if lo == hi {
		// Constant feature: a single all-covering bin.
		return binning.FromBoundaries(feature, nil)
	}

	step := (hi - lo) / float64(maxBins)
	cuts := make([]float64, 0, maxBins-1)
	for i := 1; i < maxBins; i++ {
		cuts = append(cuts, lo+step*float64(i))
	}
	return binning.FromBoundaries(feature, cuts)
}
