package search

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// SeededRNG derives deterministic random streams from a base seed. Same
// (scope, trial, seed) always yields the same stream, so trial proposals do
// not depend on which worker evaluates them or which run they belong to.
type SeededRNG struct{}

// NewSeededRNG creates the deterministic RNG adapter.
func NewSeededRNG() *SeededRNG {
	return &SeededRNG{}
}

// TrialStream creates the generator for one trial.
func (s *SeededRNG) TrialStream(_ context.Context, scope string, trialNumber int, baseSeed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(mix(scope, baseSeed) + int64(trialNumber))), nil
}

func mix(name string, seed int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64()) ^ seed
}
