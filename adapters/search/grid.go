package search

import (
	"math/rand"

	"stablebin/domain/stability"
	"stablebin/ports"
)

// Grid walks a fixed lattice over the parameter space, cycling when the trial
// budget exceeds the lattice size. Useful for exhaustive audits of small
// spaces; ignores the random stream.
type Grid struct {
	// Steps per continuous dimension. Minimum 2.
	Steps int
}

// NewGrid creates a grid sampler with the given resolution.
func NewGrid(steps int) *Grid {
	if steps < 2 {
		steps = 2
	}
	return &Grid{Steps: steps}
}

// Name identifies the sampler in manifests.
func (g *Grid) Name() string { return "grid" }

// Propose returns the lattice point for a trial number.
func (g *Grid) Propose(_ *rand.Rand, space ports.ParamSpace, trialNumber int) stability.Params {
	binSpan := space.MaxBinsMax - space.MaxBinsMin + 1
	if binSpan < 1 {
		binSpan = 1
	}
	total := binSpan * g.Steps * g.Steps
	idx := trialNumber % total

	binIdx := idx % binSpan
	idx /= binSpan
	sizeIdx := idx % g.Steps
	idx /= g.Steps
	gapIdx := idx % g.Steps

	return stability.Params{
		MaxBins:          space.MaxBinsMin + binIdx,
		MinBinSize:       lattice(space.MinBinSizeMin, space.MinBinSizeMax, sizeIdx, g.Steps),
		MinEventRateDiff: lattice(space.MinEventRateDiffMin, space.MinEventRateDiffMax, gapIdx, g.Steps),
	}
}

func lattice(lo, hi float64, idx, steps int) float64 {
	if steps < 2 || hi <= lo {
		return lo
	}
	return lo + (hi-lo)*float64(idx)/float64(steps-1)
}
