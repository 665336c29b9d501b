package binning

import (
	"stablebin/domain/core"
)

// Direction is the required event-rate ordering across bins.
type Direction string

const (
	DirectionAuto       Direction = "auto"
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
)

// Weights are the composite objective weights: score = Separability*sep +
// IV*iv + KS*ks.
type Weights struct {
	Separability float64 `json:"separability"`
	IV           float64 `json:"iv"`
	KS           float64 `json:"ks"`
}

// DefaultWeights favors temporal separability over raw predictive power.
func DefaultWeights() Weights {
	return Weights{Separability: 0.7, IV: 0.2, KS: 0.1}
}

// Config is the immutable per-call configuration. It is passed explicitly into
// every refinement and scoring call; nothing here is process-global.
type Config struct {
	Monotonic        Direction `json:"monotonic"`
	MinEventRateDiff float64   `json:"min_event_rate_diff"`
	MinBinSize       float64   `json:"min_bin_size"` // population fraction, e.g. 0.05
	MaxBins          int       `json:"max_bins"`
	Weights          Weights   `json:"weights"`
	ReferenceCohort  string    `json:"reference_cohort,omitempty"` // empty = earliest
	CheckStability   bool      `json:"check_stability"`
	EpsilonFloor     float64   `json:"epsilon_floor"` // share floor for PSI/IV log guards
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		Monotonic:        DirectionAuto,
		MinEventRateDiff: 0.02,
		MinBinSize:       0.05,
		MaxBins:          6,
		Weights:          DefaultWeights(),
		CheckStability:   true,
		EpsilonFloor:     1e-4,
	}
}

// Validate rejects malformed configuration. Contradictory but well-formed hard
// constraints (e.g. MinBinSize > 1) are not rejected here: the refiner raises
// ErrUnsatisfiableConstraint for those, so the search adapter can record them
// as failed trials.
func (c Config) Validate() error {
	switch c.Monotonic {
	case DirectionAuto, DirectionIncreasing, DirectionDecreasing:
	default:
		return core.NewConfigError("monotonic", "must be auto, increasing or decreasing")
	}
	if c.MinEventRateDiff < 0 {
		return core.NewConfigError("min_event_rate_diff", "must be non-negative")
	}
	if c.MinBinSize < 0 {
		return core.NewConfigError("min_bin_size", "must be non-negative")
	}
	if c.MaxBins < 1 {
		return core.NewConfigError("max_bins", "must be at least 1")
	}
	if c.EpsilonFloor < 0 {
		return core.NewConfigError("epsilon_floor", "must be non-negative")
	}
	if c.Weights.Separability < 0 || c.Weights.IV < 0 || c.Weights.KS < 0 {
		return core.NewConfigError("weights", "must be non-negative")
	}
	return nil
}

// WithEpsilonDefault fills the epsilon floor when the caller left it zero.
func (c Config) WithEpsilonDefault() Config {
	if c.EpsilonFloor == 0 {
		c.EpsilonFloor = 1e-4
	}
	return c
}
