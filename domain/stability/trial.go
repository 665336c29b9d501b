package stability

import (
	"encoding/json"
	"math"

	"stablebin/domain/core"
)

// Params is one hyperparameter vector explored by the search.
type Params struct {
	MaxBins          int     `json:"max_bins"`
	MinBinSize       float64 `json:"min_bin_size"`
	MinEventRateDiff float64 `json:"min_event_rate_diff"`
}

// Trial records one scored hyperparameter evaluation. Trials are immutable
// once scored; the trial history is append-only.
type Trial struct {
	ID      core.TrialID    `json:"id"`
	RunID   core.RunID      `json:"run_id"`
	Number  int             `json:"number"`
	Feature core.FeatureKey `json:"feature"`
	Params  Params          `json:"params"`

	Score        float64 `json:"score"` // -Inf sentinel on failure
	Separability float64 `json:"separability"`
	IV           float64 `json:"iv"`
	KS           float64 `json:"ks"`
	Bins         int     `json:"bins"`

	Failed        bool           `json:"failed"`
	FailureReason string         `json:"failure_reason,omitempty"`
	CreatedAt     core.Timestamp `json:"created_at"`
}

// trialAlias strips the methods so the custom marshaling below cannot recurse.
type trialAlias Trial

// MarshalJSON serializes the score as null for failed trials. JSON has no
// representation for the -Inf sentinel, so the wire format mirrors the
// ledger's nullable score column.
func (t Trial) MarshalJSON() ([]byte, error) {
	aux := struct {
		trialAlias
		Score *float64 `json:"score"`
	}{trialAlias: trialAlias(t)}
	if !t.Failed && !math.IsInf(t.Score, 0) && !math.IsNaN(t.Score) {
		aux.Score = &t.Score
	}
	return json.Marshal(aux)
}

// UnmarshalJSON restores the -Inf sentinel from a null score.
func (t *Trial) UnmarshalJSON(data []byte) error {
	aux := struct {
		*trialAlias
		Score *float64 `json:"score"`
	}{trialAlias: (*trialAlias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Score != nil {
		t.Score = *aux.Score
	} else {
		t.Score = math.Inf(-1)
	}
	return nil
}
