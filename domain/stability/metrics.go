package stability

import (
	"stablebin/domain/core"
)

// BinDrift summarizes one bin's event-rate movement across cohorts.
type BinDrift struct {
	BinIndex int     `json:"bin_index"`
	StdDev   float64 `json:"std_dev"`
	Range    float64 `json:"range"`
}

// Metrics is the per-feature stability record. It is recomputed in full after
// every refinement step that changes the bin set.
type Metrics struct {
	Feature core.FeatureKey `json:"feature"`

	// PSI of each non-reference cohort's population distribution against the
	// reference cohort. Mean feeds the composite score; max is reported for
	// audit thresholds.
	PSIByCohort map[string]float64 `json:"psi_by_cohort"`
	PSIMean     float64            `json:"psi_mean"`
	PSIMax      float64            `json:"psi_max"`

	// KS on the full (not per-cohort) aggregation.
	KS float64 `json:"ks"`

	// Mean pairwise distance between bins' event-rate time series.
	Separability float64 `json:"separability"`

	// Event-rate series per bin, cohort-ordered, for reporting.
	Cohorts    []string    `json:"cohorts"`
	RatesByBin [][]float64 `json:"rates_by_bin"`

	// Per-bin drift summary (std dev and range of the rate series).
	Drift []BinDrift `json:"drift"`

	// Number of epsilon-floor substitutions applied in PSI. Reported as
	// metadata because the floor biases PSI for near-empty bins.
	EpsilonSubstitutions int      `json:"epsilon_substitutions"`
	Warnings             []string `json:"warnings,omitempty"`
}
