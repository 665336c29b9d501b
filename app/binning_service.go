package app

import (
	"context"
	"fmt"
	"time"

	"stablebin/adapters/stats/cohort"
	"stablebin/adapters/stats/objective"
	"stablebin/adapters/stats/refine"
	statstab "stablebin/adapters/stats/stability"
	"stablebin/domain/binning"
	"stablebin/domain/core"
	"stablebin/domain/stability"
	"stablebin/ports"
)

// BinningService orchestrates one fit: initial split, monotonic refinement,
// stability scoring, and the WoE/objective outputs.
type BinningService struct {
	splitter   ports.SplitGenerator
	grouper    ports.CategoryGrouper
	aggregator *cohort.Aggregator
	refiner    *refine.Refiner
	scorer     *statstab.Scorer
}

// NewBinningService wires the service. The splitter and grouper are capability
// ports; the refinement and scoring engines are owned here.
func NewBinningService(splitter ports.SplitGenerator, grouper ports.CategoryGrouper) *BinningService {
	agg := cohort.New()
	return &BinningService{
		splitter:   splitter,
		grouper:    grouper,
		aggregator: agg,
		refiner:    refine.New(agg),
		scorer:     statstab.NewScorer(),
	}
}

// FitRequest carries one feature's observations plus configuration. Exactly
// one of Values (numeric) or Categories (categorical) must be set.
type FitRequest struct {
	Feature    core.FeatureKey `json:"feature"`
	Values     []float64       `json:"values,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	Labels     []int           `json:"labels"`
	Cohorts    []string        `json:"cohorts"`
	Config     binning.Config  `json:"config"`
}

// FitResult is the complete output of one fit.
type FitResult struct {
	Feature    core.FeatureKey    `json:"feature"`
	BinSet     *binning.BinSet    `json:"bin_set"`
	Metrics    *stability.Metrics `json:"metrics"`
	WoE        *binning.WoETable  `json:"woe"`
	Score      float64            `json:"score"`
	Direction  binning.Direction  `json:"direction"`
	Degenerate bool               `json:"degenerate"`
	Warnings   []string           `json:"warnings,omitempty"`
	RuntimeMs  int64              `json:"runtime_ms"`
}

func (r *FitRequest) observations() ([]binning.Observation, error) {
	n := len(r.Labels)
	if len(r.Cohorts) != n {
		return nil, core.NewConfigError("cohorts", fmt.Sprintf("%d rows for %d labels", len(r.Cohorts), n))
	}
	if n == 0 {
		return nil, core.NewInsufficientDataError(r.Feature.String(), 0)
	}
	for i, l := range r.Labels {
		if l != 0 && l != 1 {
			return nil, core.NewConfigError("labels", fmt.Sprintf("row %d: label %d is not binary", i, l))
		}
	}

	obs := make([]binning.Observation, n)
	switch {
	case len(r.Values) == n && len(r.Categories) == 0:
		for i := range obs {
			obs[i] = binning.Observation{Value: r.Values[i], Label: r.Labels[i], Cohort: r.Cohorts[i]}
		}
	case len(r.Categories) == n && len(r.Values) == 0:
		for i := range obs {
			obs[i] = binning.Observation{Category: r.Categories[i], Label: r.Labels[i], Cohort: r.Cohorts[i]}
		}
	default:
		return nil, core.NewConfigError("values", "exactly one of values or categories must match the label rows")
	}
	return obs, nil
}

// Fit runs the full pipeline for one feature. Errors are returned as-is so a
// direct caller learns the specific constraint that failed; only the search
// service downgrades them to failed trials.
func (s *BinningService) Fit(ctx context.Context, req FitRequest) (*FitResult, error) {
	start := time.Now()

	cfg := req.Config.WithEpsilonDefault()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	obs, err := req.observations()
	if err != nil {
		return nil, err
	}

	initial, err := s.initialSplit(req, cfg)
	if err != nil {
		return nil, err
	}

	refined, err := s.refiner.Run(initial, obs, cfg)
	if err != nil {
		return nil, err
	}

	metrics, err := s.score(refined.BinSet, obs, cfg)
	if err != nil {
		return nil, err
	}

	woe, subs, err := objective.WoETable(refined.BinSet, cfg.EpsilonFloor)
	if err != nil {
		return nil, err
	}
	if subs > 0 {
		metrics.Warnings = append(metrics.Warnings,
			fmt.Sprintf("iv: %d zero share(s) floored at %g", subs, cfg.EpsilonFloor))
	}

	composer := objective.NewComposer(cfg.Weights)
	result := &FitResult{
		Feature:    req.Feature,
		BinSet:     refined.BinSet,
		Metrics:    metrics,
		WoE:        woe,
		Score:      composer.Compose(metrics.Separability, woe.IV, metrics.KS),
		Direction:  refined.Direction,
		Degenerate: refined.Degenerate,
		Warnings:   refined.Warnings,
		RuntimeMs:  time.Since(start).Milliseconds(),
	}
	return result, nil
}

func (s *BinningService) initialSplit(req FitRequest, cfg binning.Config) (*binning.BinSet, error) {
	if len(req.Categories) > 0 {
		return s.grouper.Group(req.Feature, req.Categories, req.Labels, cfg.MaxBins)
	}
	return s.splitter.Generate(req.Feature, req.Values, cfg.MaxBins)
}

func (s *BinningService) score(binset *binning.BinSet, obs []binning.Observation, cfg binning.Config) (*stability.Metrics, error) {
	table, err := s.aggregator.Aggregate(binset, obs, cfg.CheckStability)
	if err != nil {
		return nil, err
	}
	scorer := *s.scorer
	if cfg.EpsilonFloor > 0 {
		scorer.Epsilon = cfg.EpsilonFloor
	}
	return scorer.Score(table, cfg.ReferenceCohort)
}

// Transform maps new feature values through a fitted result onto WoE values.
func (s *BinningService) Transform(result *FitResult, obs []binning.Observation) []float64 {
	return result.WoE.Apply(result.BinSet, obs)
}
