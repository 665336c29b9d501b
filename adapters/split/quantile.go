// Package split provides the built-in initial split generators. They satisfy
// the ports.SplitGenerator / ports.CategoryGrouper capabilities; an external
// optimal-binning implementation can replace any of them, since the refiner
// only assumes an exhaustive partition.
package split

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"

	"stablebin/domain/binning"
	"stablebin/domain/core"
)

// Quantile generates cuts at equal population quantiles.
type Quantile struct{}

// NewQuantile creates a quantile split generator.
func NewQuantile() *Quantile {
	return &Quantile{}
}

// Name identifies the generator in manifests.
func (q *Quantile) Name() string { return "quantile" }

// Generate places maxBins-1 interior cuts at the value quantiles. Duplicate
// cut points (heavy ties in the data) collapse, so the returned partition may
// hold fewer than maxBins bins.
func (q *Quantile) Generate(feature core.FeatureKey, values []float64, maxBins int) (*binning.BinSet, error) {
	if len(values) == 0 {
		return nil, core.NewInsufficientDataError(feature.String(), 0)
	}
	if maxBins < 1 {
		return nil, core.NewConfigError("max_bins", "must be at least 1")
	}

	cuts := make([]float64, 0, maxBins-1)
	for i := 1; i < maxBins; i++ {
		pct := float64(i) / float64(maxBins) * 100
		cut, err := mstats.Percentile(values, pct)
		if err != nil {
			return nil, fmt.Errorf("percentile %.1f: %w", pct, err)
		}
		cuts = append(cuts, cut)
	}
	return binning.FromBoundaries(feature, cuts)
}
