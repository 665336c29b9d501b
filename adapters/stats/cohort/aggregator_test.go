package cohort

import (
	"errors"
	"testing"

	"stablebin/domain/binning"
	"stablebin/domain/core"
)

func numericBinSet(t *testing.T, cuts ...float64) *binning.BinSet {
	t.Helper()
	binset, err := binning.FromBoundaries(core.FeatureKey("utilization"), cuts)
	if err != nil {
		t.Fatalf("FromBoundaries failed: %v", err)
	}
	return binset
}

func TestAggregate_ZeroFillsEmptyCells(t *testing.T) {
	// Two bins, two cohorts, but the second bin only has rows in the first
	// cohort. The (bin 1, cohort 2) cell must exist with zero tallies, not be
	// omitted.
	binset := numericBinSet(t, 5.0)
	obs := []binning.Observation{
		{Value: 1, Label: 0, Cohort: "2024-01"},
		{Value: 2, Label: 1, Cohort: "2024-02"},
		{Value: 9, Label: 1, Cohort: "2024-01"},
	}

	table, err := New().Aggregate(binset, obs, true)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(table.Cohorts) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(table.Cohorts))
	}
	cohortIdx, ok := table.CohortIndex("2024-02")
	if !ok {
		t.Fatal("cohort 2024-02 missing")
	}
	cell := table.Cell(1, cohortIdx)
	if cell.Count != 0 || cell.Events != 0 {
		t.Errorf("expected zero-filled cell, got %+v", cell)
	}
	if _, defined := cell.EventRate(); defined {
		t.Error("empty cell must report an undefined rate")
	}
}

func TestAggregate_Tallies(t *testing.T) {
	binset := numericBinSet(t, 5.0)
	obs := []binning.Observation{
		{Value: 1, Label: 1, Cohort: "2024-01"},
		{Value: 2, Label: 0, Cohort: "2024-01"},
		{Value: 3, Label: 1, Cohort: "2024-02"},
		{Value: 8, Label: 0, Cohort: "2024-02"},
	}

	table, err := New().Aggregate(binset, obs, true)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if got := table.BinTotal(0); got != 3 {
		t.Errorf("bin 0 total = %d, want 3", got)
	}
	if got := table.BinEvents(0); got != 2 {
		t.Errorf("bin 0 events = %d, want 2", got)
	}
	first, _ := table.CohortIndex("2024-01")
	if got := table.CohortTotal(first); got != 2 {
		t.Errorf("cohort 2024-01 total = %d, want 2", got)
	}
}

func TestAggregate_RequiresCohortVariation(t *testing.T) {
	binset := numericBinSet(t, 5.0)
	obs := []binning.Observation{
		{Value: 1, Label: 0, Cohort: "2024-01"},
		{Value: 9, Label: 1, Cohort: "2024-01"},
	}

	_, err := New().Aggregate(binset, obs, true)
	if !errors.Is(err, core.ErrEmptyCohort) {
		t.Fatalf("expected ErrEmptyCohort, got %v", err)
	}

	// Without the stability requirement a single cohort is fine.
	if _, err := New().Aggregate(binset, obs, false); err != nil {
		t.Fatalf("unexpected error without stability requirement: %v", err)
	}
}

func TestAggregate_CohortsSortedTemporally(t *testing.T) {
	binset := numericBinSet(t)
	obs := []binning.Observation{
		{Value: 1, Label: 0, Cohort: "2024-03"},
		{Value: 1, Label: 0, Cohort: "2024-01"},
		{Value: 1, Label: 0, Cohort: "2024-02"},
	}

	table, err := New().Aggregate(binset, obs, true)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	want := []string{"2024-01", "2024-02", "2024-03"}
	for i, id := range want {
		if table.Cohorts[i] != id {
			t.Fatalf("cohorts not in temporal order: %v", table.Cohorts)
		}
	}
}
