// Package search provides the built-in hyperparameter samplers. They satisfy
// ports.Sampler; a trial-based optimizer library can be plugged in behind the
// same capability.
package search

import (
	"math/rand"

	"stablebin/domain/stability"
	"stablebin/ports"
)

// DefaultSpace mirrors the documented search ranges.
func DefaultSpace() ports.ParamSpace {
	return ports.ParamSpace{
		MaxBinsMin:          3,
		MaxBinsMax:          10,
		MinBinSizeMin:       0.01,
		MinBinSizeMax:       0.1,
		MinEventRateDiffMin: 0.01,
		MinEventRateDiffMax: 0.1,
	}
}

// Random samples each hyperparameter uniformly from its range.
type Random struct{}

// NewRandom creates a uniform random sampler.
func NewRandom() *Random {
	return &Random{}
}

// Name identifies the sampler in manifests.
func (s *Random) Name() string { return "random" }

// Propose draws one parameter vector. The draw depends only on the supplied
// generator, so a per-trial seeded stream makes the whole search reproducible
// regardless of worker scheduling.
func (s *Random) Propose(r *rand.Rand, space ports.ParamSpace, trialNumber int) stability.Params {
	maxBins := space.MaxBinsMin
	if span := space.MaxBinsMax - space.MaxBinsMin; span > 0 {
		maxBins += r.Intn(span + 1)
	}
	return stability.Params{
		MaxBins:          maxBins,
		MinBinSize:       uniform(r, space.MinBinSizeMin, space.MinBinSizeMax),
		MinEventRateDiff: uniform(r, space.MinEventRateDiffMin, space.MinEventRateDiffMax),
	}
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}
