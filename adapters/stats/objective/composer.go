// Package objective combines separability, information value, and KS into the
// scalar score ranked by the hyperparameter search.
package objective

import (
	"stablebin/domain/binning"
)

// Composer computes score = w_sep*separability + w_iv*IV + w_ks*KS.
// Deterministic given its inputs; no side effects.
type Composer struct {
	Weights binning.Weights
}

// NewComposer creates a composer. Zero weights fall back to the documented
// 0.7/0.2/0.1 defaults.
func NewComposer(w binning.Weights) *Composer {
	if w.Separability == 0 && w.IV == 0 && w.KS == 0 {
		w = binning.DefaultWeights()
	}
	return &Composer{Weights: w}
}

// Compose returns the composite score.
func (c *Composer) Compose(separability, iv, ks float64) float64 {
	return c.Weights.Separability*separability + c.Weights.IV*iv + c.Weights.KS*ks
}
