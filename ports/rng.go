package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic searches.
type RNGPort interface {
	// TrialStream creates the generator for one trial so sampling is identical
	// for the same (scope, trial, seed) regardless of worker scheduling or run
	// identity.
	TrialStream(ctx context.Context, scope string, trialNumber int, baseSeed int64) (*rand.Rand, error)
}
