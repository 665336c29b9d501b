package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"stablebin/domain/binning"
	"stablebin/domain/core"
	"stablebin/domain/stability"
	"stablebin/ports"
)

// SentinelScore is recorded for failed trials. It orders strictly below any
// real composite score, so a failed hyperparameter combination never wins but
// also never halts the exploration of the others.
var SentinelScore = math.Inf(-1)

// SearchService evaluates the binning objective across many hyperparameter
// vectors. Trials are independent, so they run in parallel over a shared
// read-only observation set; the history ledger is append-only.
type SearchService struct {
	binning *BinningService
	sampler ports.Sampler
	ledger  ports.TrialLedgerPort
	rng     ports.RNGPort
}

// NewSearchService wires the search adapter.
func NewSearchService(binning *BinningService, sampler ports.Sampler, ledger ports.TrialLedgerPort, rng ports.RNGPort) *SearchService {
	return &SearchService{binning: binning, sampler: sampler, ledger: ledger, rng: rng}
}

// SearchRequest describes one hyperparameter search over a single feature.
type SearchRequest struct {
	Feature    core.FeatureKey `json:"feature"`
	Values     []float64       `json:"values,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	Labels     []int           `json:"labels"`
	Cohorts    []string        `json:"cohorts"`

	Base        binning.Config   `json:"base_config"`
	Space       ports.ParamSpace `json:"space"`
	Trials      int              `json:"trials"`      // default 20
	Seed        int64            `json:"seed"`        // base seed for reproducibility
	Parallelism int              `json:"parallelism"` // default 1
}

// SearchResult is the outcome of a whole search run.
type SearchResult struct {
	RunID   core.RunID        `json:"run_id"`
	Best    *stability.Trial  `json:"best,omitempty"`
	BestFit *FitResult        `json:"best_fit,omitempty"`
	Trials  []stability.Trial `json:"trials"`
	Failed  int               `json:"failed"`
}

// Run executes the search. Cancellation is honored between trials, never
// mid-refinement: a single refinement run is bounded by its shrinking bin
// count and short.
func (s *SearchService) Run(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	trials := req.Trials
	if trials <= 0 {
		trials = 20
	}
	parallelism := req.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	space := req.Space
	if space == (ports.ParamSpace{}) {
		space = defaultSpace()
	}

	runID := core.RunID(core.NewID())
	log.Printf("[Search] run %s: %d trial(s), sampler=%s, seed=%d, parallelism=%d",
		runID, trials, s.sampler.Name(), req.Seed, parallelism)

	var (
		mu      sync.Mutex
		history = make([]stability.Trial, 0, trials)
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for number := 0; number < trials; number++ {
		// Cancellation checkpoint between trials.
		if err := gctx.Err(); err != nil {
			break
		}
		number := number
		g.Go(func() error {
			trial, err := s.evaluate(gctx, runID, number, req, space)
			if err != nil {
				return err
			}
			if err := s.ledger.AppendTrial(gctx, *trial); err != nil {
				return fmt.Errorf("append trial %d: %w", number, err)
			}
			mu.Lock()
			history = append(history, *trial)
			if trial.Failed {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(history, func(i, j int) bool { return history[i].Number < history[j].Number })

	result := &SearchResult{RunID: runID, Trials: history, Failed: failed}
	if err := ctx.Err(); err != nil {
		// Cancelled between trials: report the partial history with the
		// cancellation, not a spurious all-failed error.
		return result, err
	}
	best := bestTrial(history)
	if best == nil {
		return result, fmt.Errorf("all %d trial(s) failed: %w", len(history), core.ErrUnsatisfiableConstraint)
	}
	result.Best = best

	// Refit with the winning parameters so the caller gets the final bin set
	// and transform table, not just the score.
	fit, err := s.binning.Fit(ctx, fitRequest(req, best.Params))
	if err != nil {
		return nil, fmt.Errorf("refit best trial %d: %w", best.Number, err)
	}
	result.BestFit = fit

	log.Printf("[Search] run %s: best trial %d score=%.4f (sep=%.4f iv=%.4f ks=%.4f), %d failed",
		runID, best.Number, best.Score, best.Separability, best.IV, best.KS, failed)
	return result, nil
}

// evaluate scores one hyperparameter vector. Recoverable domain errors become
// failed trials with the sentinel score; anything else aborts the search.
func (s *SearchService) evaluate(ctx context.Context, runID core.RunID, number int, req SearchRequest, space ports.ParamSpace) (*stability.Trial, error) {
	// Streams are scoped by feature, not run ID, so the same seed reproduces
	// the same proposals across runs.
	stream, err := s.rng.TrialStream(ctx, req.Feature.String(), number, req.Seed)
	if err != nil {
		return nil, fmt.Errorf("trial %d rng: %w", number, err)
	}
	params := s.sampler.Propose(stream, space, number)

	trial := &stability.Trial{
		ID:        core.TrialID(core.NewID()),
		RunID:     runID,
		Number:    number,
		Feature:   req.Feature,
		Params:    params,
		CreatedAt: core.Now(),
	}

	fit, err := s.binning.Fit(ctx, fitRequest(req, params))
	if err != nil {
		if !core.IsTrialRecoverable(err) {
			return nil, fmt.Errorf("trial %d: %w", number, err)
		}
		trial.Failed = true
		trial.FailureReason = err.Error()
		trial.Score = SentinelScore
		log.Printf("[Search] run %s trial %d failed: %v", runID, number, err)
		return trial, nil
	}

	trial.Score = fit.Score
	trial.Separability = fit.Metrics.Separability
	trial.IV = fit.WoE.IV
	trial.KS = fit.Metrics.KS
	trial.Bins = fit.BinSet.Len()
	return trial, nil
}

// fitRequest overlays one trial's hyperparameters onto the base config.
func fitRequest(req SearchRequest, params stability.Params) FitRequest {
	cfg := req.Base
	cfg.MaxBins = params.MaxBins
	cfg.MinBinSize = params.MinBinSize
	cfg.MinEventRateDiff = params.MinEventRateDiff
	return FitRequest{
		Feature:    req.Feature,
		Values:     req.Values,
		Categories: req.Categories,
		Labels:     req.Labels,
		Cohorts:    req.Cohorts,
		Config:     cfg,
	}
}

// bestTrial picks the highest score among successful trials; ties go to the
// lowest trial number for reproducibility.
func bestTrial(history []stability.Trial) *stability.Trial {
	var best *stability.Trial
	for i := range history {
		t := &history[i]
		if t.Failed {
			continue
		}
		if best == nil || t.Score > best.Score {
			best = t
		}
	}
	return best
}

func defaultSpace() ports.ParamSpace {
	return ports.ParamSpace{
		MaxBinsMin:          3,
		MaxBinsMax:          10,
		MinBinSizeMin:       0.01,
		MinBinSizeMax:       0.1,
		MinEventRateDiffMin: 0.01,
		MinEventRateDiffMax: 0.1,
	}
}
