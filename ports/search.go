package ports

import (
	"math/rand"

	"stablebin/domain/stability"
)

// ParamSpace bounds the hyperparameter search. Ranges are inclusive.
type ParamSpace struct {
	MaxBinsMin          int     `json:"max_bins_min"`
	MaxBinsMax          int     `json:"max_bins_max"`
	MinBinSizeMin       float64 `json:"min_bin_size_min"`
	MinBinSizeMax       float64 `json:"min_bin_size_max"`
	MinEventRateDiffMin float64 `json:"min_event_rate_diff_min"`
	MinEventRateDiffMax float64 `json:"min_event_rate_diff_max"`
}

// Sampler proposes the hyperparameter vector for a given trial number.
// Proposals must depend only on (rng, space, trialNumber) so a search is
// reproducible regardless of how trials are scheduled across workers.
type Sampler interface {
	Name() string
	Propose(r *rand.Rand, space ParamSpace, trialNumber int) stability.Params
}
