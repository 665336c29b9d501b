package refine

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"stablebin/adapters/stats/cohort"
	"stablebin/domain/binning"
	"stablebin/domain/core"
)

// makeObs builds observations for len(rates) bins of perBin rows each, with
// the given event rate per bin, spread over the cohorts. Bin i holds values
// around float64(i).
func makeObs(rates []float64, perBin int, cohorts []string) []binning.Observation {
	obs := make([]binning.Observation, 0, len(rates)*perBin)
	for b, rate := range rates {
		events := int(math.Round(rate * float64(perBin)))
		for i := 0; i < perBin; i++ {
			label := 0
			if i < events {
				label = 1
			}
			obs = append(obs, binning.Observation{
				Value:  float64(b),
				Label:  label,
				Cohort: cohorts[i%len(cohorts)],
			})
		}
	}
	return obs
}

// makeBinSet builds the matching initial partition: one bin per rate with cuts
// at the midpoints.
func makeBinSet(t *testing.T, numBins int) *binning.BinSet {
	t.Helper()
	cuts := make([]float64, 0, numBins-1)
	for i := 0; i < numBins-1; i++ {
		cuts = append(cuts, float64(i)+0.5)
	}
	binset, err := binning.FromBoundaries(core.FeatureKey("score"), cuts)
	if err != nil {
		t.Fatalf("FromBoundaries failed: %v", err)
	}
	return binset
}

func config(direction binning.Direction, minGap, minSize float64) binning.Config {
	cfg := binning.DefaultConfig()
	cfg.Monotonic = direction
	cfg.MinEventRateDiff = minGap
	cfg.MinBinSize = minSize
	return cfg
}

func TestRefiner_MonotonicityMergesBeforeGap(t *testing.T) {
	// Rates [0.02, 0.07, 0.06, 0.20]: pair (1,2) violates increasing
	// monotonicity and must merge first, even though its gap |0.01| is also
	// below the threshold. The merged set [0.02, 0.065, 0.20] satisfies both
	// constraints, so exactly one merge happens.
	obs := makeObs([]float64{0.02, 0.07, 0.06, 0.20}, 100, []string{"2024-01", "2024-02"})
	binset := makeBinSet(t, 4)

	r := New(cohort.New())
	result, err := r.Run(binset, obs, config(binning.DirectionIncreasing, 0.03, 0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Merges != 1 {
		t.Errorf("expected 1 merge, got %d", result.Merges)
	}
	if result.BinSet.Len() != 3 {
		t.Fatalf("expected 3 final bins, got %d", result.BinSet.Len())
	}

	rates := result.BinSet.EventRates()
	for i := 1; i < len(rates); i++ {
		if rates[i] <= rates[i-1] {
			t.Errorf("rates not strictly increasing at %d: %v", i, rates)
		}
		if rates[i]-rates[i-1] < 0.03 {
			t.Errorf("gap %f below threshold at %d", rates[i]-rates[i-1], i)
		}
	}
}

func TestRefiner_GapViolationForcesFurtherMerges(t *testing.T) {
	// Rates [0.05, 0.07, 0.06, 0.20]: after the monotonicity merge of (1,2)
	// the set is [0.05, 0.065, 0.20], whose first gap 0.015 still violates
	// the 0.03 threshold, forcing a second merge down to [0.06, 0.20].
	obs := makeObs([]float64{0.05, 0.07, 0.06, 0.20}, 100, []string{"2024-01", "2024-02"})
	binset := makeBinSet(t, 4)

	r := New(cohort.New())
	result, err := r.Run(binset, obs, config(binning.DirectionIncreasing, 0.03, 0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.BinSet.Len() != 2 {
		t.Fatalf("expected 2 final bins, got %d", result.BinSet.Len())
	}
	rates := result.BinSet.EventRates()
	if math.Abs(rates[0]-0.06) > 1e-9 || math.Abs(rates[1]-0.20) > 1e-9 {
		t.Errorf("unexpected final rates %v", rates)
	}
	if result.Merges != 2 {
		t.Errorf("expected 2 merges, got %d", result.Merges)
	}
}

func TestRefiner_Idempotent(t *testing.T) {
	obs := makeObs([]float64{0.02, 0.10, 0.30}, 100, []string{"2024-01", "2024-02"})
	binset := makeBinSet(t, 3)

	r := New(cohort.New())
	first, err := r.Run(binset, obs, config(binning.DirectionIncreasing, 0.03, 0))
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := r.Run(first.BinSet, obs, config(binning.DirectionIncreasing, 0.03, 0))
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	if second.Merges != 0 {
		t.Errorf("re-running a terminal bin set must not merge, got %d merges", second.Merges)
	}
	if second.BinSet.Len() != first.BinSet.Len() {
		t.Errorf("bin count changed on re-run: %d vs %d", second.BinSet.Len(), first.BinSet.Len())
	}
	for i := range first.BinSet.Bins {
		if first.BinSet.Bins[i].EventRate() != second.BinSet.Bins[i].EventRate() {
			t.Errorf("bin %d changed on re-run", i)
		}
	}
}

func TestRefiner_DegenerateSingleBin(t *testing.T) {
	// Identical rates everywhere: every gap is 0, so the set collapses to a
	// single bin. That is a warning, not an error.
	obs := makeObs([]float64{0.10, 0.10, 0.10}, 100, []string{"2024-01", "2024-02"})
	binset := makeBinSet(t, 3)

	r := New(cohort.New())
	result, err := r.Run(binset, obs, config(binning.DirectionIncreasing, 0.03, 0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Degenerate {
		t.Error("expected degenerate result")
	}
	if result.BinSet.Len() != 1 {
		t.Errorf("expected 1 bin, got %d", result.BinSet.Len())
	}
	if len(result.Warnings) == 0 {
		t.Error("degenerate result must carry a warning")
	}
}

func TestRefiner_UnsatisfiableMinBinSize(t *testing.T) {
	obs := makeObs([]float64{0.05, 0.20}, 50, []string{"2024-01"})
	binset := makeBinSet(t, 2)

	r := New(cohort.New())
	_, err := r.Run(binset, obs, config(binning.DirectionIncreasing, 0.03, 1.5))
	if !errors.Is(err, core.ErrUnsatisfiableConstraint) {
		t.Fatalf("expected ErrUnsatisfiableConstraint, got %v", err)
	}
}

func TestRefiner_AutoDetectsDecreasingDirection(t *testing.T) {
	obs := makeObs([]float64{0.40, 0.25, 0.10}, 100, []string{"2024-01", "2024-02"})
	binset := makeBinSet(t, 3)

	r := New(cohort.New())
	result, err := r.Run(binset, obs, config(binning.DirectionAuto, 0.03, 0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Direction != binning.DirectionDecreasing {
		t.Errorf("expected decreasing direction, got %s", result.Direction)
	}
	if result.BinSet.Len() != 3 {
		t.Errorf("already-monotone set should stay at 3 bins, got %d", result.BinSet.Len())
	}
}

func TestRefiner_MinSizeFloorEliminatesUndersizedBins(t *testing.T) {
	// Middle bin holds 80 of 1000 rows; a 10% floor (100 rows) forces it to
	// merge into its left neighbor, leaving two bins that both clear the
	// floor.
	counts := []int{500, 80, 420}
	rates := []float64{0.02, 0.10, 0.30}
	cohorts := []string{"2024-01", "2024-02"}
	var obs []binning.Observation
	for b := range counts {
		events := int(math.Round(rates[b] * float64(counts[b])))
		for i := 0; i < counts[b]; i++ {
			label := 0
			if i < events {
				label = 1
			}
			obs = append(obs, binning.Observation{Value: float64(b), Label: label, Cohort: cohorts[i%2]})
		}
	}
	binset := makeBinSet(t, 3)

	r := New(cohort.New())
	result, err := r.Run(binset, obs, config(binning.DirectionIncreasing, 0.0, 0.1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.BinSet.Len() != 2 {
		t.Fatalf("expected 2 final bins, got %d", result.BinSet.Len())
	}
	minCount := 100
	for _, b := range result.BinSet.Bins {
		if b.Count < minCount {
			t.Errorf("bin %d count %d below floor %d", b.Index, b.Count, minCount)
		}
	}
}

func TestRefiner_InvariantToObservationOrder(t *testing.T) {
	obs := makeObs([]float64{0.05, 0.07, 0.06, 0.20}, 100, []string{"2024-01", "2024-02", "2024-03"})
	shuffled := append([]binning.Observation(nil), obs...)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	r := New(cohort.New())
	cfg := config(binning.DirectionIncreasing, 0.03, 0)

	a, err := r.Run(makeBinSet(t, 4), obs, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := r.Run(makeBinSet(t, 4), shuffled, cfg)
	if err != nil {
		t.Fatalf("Run on shuffled failed: %v", err)
	}

	if a.BinSet.Len() != b.BinSet.Len() {
		t.Fatalf("bin counts differ: %d vs %d", a.BinSet.Len(), b.BinSet.Len())
	}
	for i := range a.BinSet.Bins {
		if a.BinSet.Bins[i].EventRate() != b.BinSet.Bins[i].EventRate() {
			t.Errorf("bin %d rate differs under observation reorder", i)
		}
	}
}
