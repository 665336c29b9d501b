package objective

import (
	"math"
	"testing"

	"stablebin/domain/binning"
	"stablebin/domain/core"
)

func populatedBinSet(t *testing.T, counts []int, events []int) *binning.BinSet {
	t.Helper()
	cuts := make([]float64, 0, len(counts)-1)
	for i := 0; i < len(counts)-1; i++ {
		cuts = append(cuts, float64(i)+0.5)
	}
	binset, err := binning.FromBoundaries(core.FeatureKey("dti"), cuts)
	if err != nil {
		t.Fatalf("FromBoundaries failed: %v", err)
	}
	for i := range binset.Bins {
		binset.Bins[i].Count = counts[i]
		binset.Bins[i].Events = events[i]
	}
	return binset
}

func TestWoETable_ZeroIVForUniformShares(t *testing.T) {
	// Same event rate in every bin means event and non-event shares coincide
	// bin by bin: every WoE is 0 and IV is exactly 0.
	binset := populatedBinSet(t, []int{100, 100}, []int{10, 10})

	table, subs, err := WoETable(binset, 1e-4)
	if err != nil {
		t.Fatalf("WoETable failed: %v", err)
	}

	if table.IV != 0 {
		t.Errorf("IV = %f, want 0", table.IV)
	}
	for _, e := range table.Entries {
		if e.WoE != 0 {
			t.Errorf("bin %d WoE = %f, want 0", e.BinIndex, e.WoE)
		}
	}
	if subs != 0 {
		t.Errorf("unexpected epsilon substitutions: %d", subs)
	}
}

func TestWoETable_HandComputed(t *testing.T) {
	// Events 10/30 of 40, non-events 90/70 of 160.
	binset := populatedBinSet(t, []int{100, 100}, []int{10, 30})

	table, _, err := WoETable(binset, 1e-4)
	if err != nil {
		t.Fatalf("WoETable failed: %v", err)
	}

	woe0 := math.Log((10.0 / 40.0) / (90.0 / 160.0))
	woe1 := math.Log((30.0 / 40.0) / (70.0 / 160.0))
	if math.Abs(table.Entries[0].WoE-woe0) > 1e-12 {
		t.Errorf("bin 0 WoE = %f, want %f", table.Entries[0].WoE, woe0)
	}
	if math.Abs(table.Entries[1].WoE-woe1) > 1e-12 {
		t.Errorf("bin 1 WoE = %f, want %f", table.Entries[1].WoE, woe1)
	}

	wantIV := (10.0/40.0-90.0/160.0)*woe0 + (30.0/40.0-70.0/160.0)*woe1
	if math.Abs(table.IV-wantIV) > 1e-12 {
		t.Errorf("IV = %f, want %f", table.IV, wantIV)
	}
	if table.IV < 0 {
		t.Errorf("IV must be non-negative, got %f", table.IV)
	}
}

func TestWoETable_FloorsEmptyShares(t *testing.T) {
	// Bin 1 has no events: its event share is floored, the substitution is
	// counted, and the WoE stays finite.
	binset := populatedBinSet(t, []int{100, 100}, []int{20, 0})

	table, subs, err := WoETable(binset, 1e-4)
	if err != nil {
		t.Fatalf("WoETable failed: %v", err)
	}

	if subs != 1 {
		t.Errorf("substitutions = %d, want 1", subs)
	}
	if math.IsInf(table.Entries[1].WoE, 0) || math.IsNaN(table.Entries[1].WoE) {
		t.Errorf("floored WoE must be finite, got %f", table.Entries[1].WoE)
	}
}

func TestWoETable_EmptyBinSetFails(t *testing.T) {
	binset := populatedBinSet(t, []int{0, 0}, []int{0, 0})

	_, _, err := WoETable(binset, 1e-4)
	if err == nil {
		t.Fatal("expected error for unpopulated bin set")
	}
	if !core.IsDataError(err) {
		t.Fatalf("expected a data error, got %v", err)
	}
}

func TestCompose_DefaultWeights(t *testing.T) {
	c := NewComposer(binning.Weights{})

	got := c.Compose(0.5, 0.3, 0.2)
	want := 0.7*0.5 + 0.2*0.3 + 0.1*0.2
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("score = %f, want %f", got, want)
	}
}

func TestCompose_CustomWeights(t *testing.T) {
	c := NewComposer(binning.Weights{Separability: 1, IV: 0, KS: 0})

	if got := c.Compose(0.42, 9.9, 9.9); got != 0.42 {
		t.Errorf("score = %f, want separability only", got)
	}
}
