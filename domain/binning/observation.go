package binning

import (
	"fmt"

	"stablebin/domain/core"
)

// Observation is one labeled input row. Immutable once constructed; every
// downstream structure (bins, cohort tables, metrics) is recomputed from
// observations rather than patched in place.
type Observation struct {
	Value    float64 `json:"value"`              // numeric feature value
	Category string  `json:"category,omitempty"` // set instead of Value for categorical features
	Label    int     `json:"label"`              // 0 = non-event, 1 = event
	Cohort   string  `json:"cohort"`             // time cohort identifier, e.g. "2024-03"
}

// Dataset holds one or more feature columns over a shared label and cohort
// column, the flat shape readers produce.
type Dataset struct {
	Numeric     map[core.FeatureKey][]float64
	Categorical map[core.FeatureKey][]string
	Labels      []int
	Cohorts     []string
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// FeatureKeys lists all feature columns, numeric first.
func (d *Dataset) FeatureKeys() []core.FeatureKey {
	keys := make([]core.FeatureKey, 0, len(d.Numeric)+len(d.Categorical))
	for k := range d.Numeric {
		keys = append(keys, k)
	}
	for k := range d.Categorical {
		keys = append(keys, k)
	}
	return keys
}

// Observations materializes the observation rows for a single feature.
func (d *Dataset) Observations(feature core.FeatureKey) ([]Observation, error) {
	n := d.Len()
	if len(d.Cohorts) != n {
		return nil, fmt.Errorf("cohort column has %d rows, labels have %d", len(d.Cohorts), n)
	}

	if values, ok := d.Numeric[feature]; ok {
		if len(values) != n {
			return nil, fmt.Errorf("feature %s has %d rows, labels have %d", feature, len(values), n)
		}
		obs := make([]Observation, n)
		for i := range values {
			obs[i] = Observation{Value: values[i], Label: d.Labels[i], Cohort: d.Cohorts[i]}
		}
		return obs, nil
	}

	if cats, ok := d.Categorical[feature]; ok {
		if len(cats) != n {
			return nil, fmt.Errorf("feature %s has %d rows, labels have %d", feature, len(cats), n)
		}
		obs := make([]Observation, n)
		for i := range cats {
			obs[i] = Observation{Category: cats[i], Label: d.Labels[i], Cohort: d.Cohorts[i]}
		}
		return obs, nil
	}

	return nil, fmt.Errorf("feature %s: %w", feature, core.ErrNotFound)
}

// Fingerprint returns a stable hash of the dataset shape (row count and the
// typed column set) for audit trails: a report stamped with the fingerprint can
// be tied back to the extract it was produced from.
func (d *Dataset) Fingerprint() core.Hash {
	fields := map[string]string{
		"rows": fmt.Sprintf("%d", d.Len()),
	}
	for k, v := range d.Numeric {
		fields["numeric:"+k.String()] = fmt.Sprintf("%d", len(v))
	}
	for k, v := range d.Categorical {
		fields["categorical:"+k.String()] = fmt.Sprintf("%d", len(v))
	}
	return core.HashFields(fields)
}
