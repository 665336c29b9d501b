package ports

import (
	"stablebin/domain/binning"
	"stablebin/domain/core"
)

// SplitGenerator produces an initial candidate partition for a numeric
// feature. The refiner treats the partition as a black box: any exhaustive,
// monotone-agnostic partition is acceptable, so an external optimal-binning
// implementation can be plugged in behind this interface.
type SplitGenerator interface {
	Name() string
	Generate(feature core.FeatureKey, values []float64, maxBins int) (*binning.BinSet, error)
}

// CategoryGrouper produces the initial category grouping for a categorical
// feature. Grouping is supervised (labels drive the ordering of groups).
type CategoryGrouper interface {
	Name() string
	Group(feature core.FeatureKey, categories []string, labels []int, maxBins int) (*binning.BinSet, error)
}
