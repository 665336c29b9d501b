// Package memory holds in-process adapter implementations used by tests and
// single-shot CLI runs that have no database configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"stablebin/domain/core"
	"stablebin/domain/stability"
)

// TrialLedger is an append-only, thread-safe in-memory trial history. A single
// writer lock guards the slice; stored trials are never mutated.
type TrialLedger struct {
	mu     sync.Mutex
	trials []stability.Trial
}

// NewTrialLedger creates an empty ledger.
func NewTrialLedger() *TrialLedger {
	return &TrialLedger{}
}

// AppendTrial records a scored trial.
func (l *TrialLedger) AppendTrial(_ context.Context, trial stability.Trial) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trials = append(l.trials, trial)
	return nil
}

// GetTrial returns a trial by ID.
func (l *TrialLedger) GetTrial(_ context.Context, id core.TrialID) (*stability.Trial, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.trials {
		if l.trials[i].ID == id {
			t := l.trials[i]
			return &t, nil
		}
	}
	return nil, core.ErrTrialNotFound
}

// ListTrialsByRun returns a run's trials ordered by trial number.
func (l *TrialLedger) ListTrialsByRun(_ context.Context, runID core.RunID) ([]stability.Trial, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]stability.Trial, 0)
	for _, t := range l.trials {
		if t.RunID == runID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// BestTrial returns the highest-scoring successful trial of a run.
func (l *TrialLedger) BestTrial(ctx context.Context, runID core.RunID) (*stability.Trial, error) {
	trials, err := l.ListTrialsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	var best *stability.Trial
	for i := range trials {
		if trials[i].Failed {
			continue
		}
		if best == nil || trials[i].Score > best.Score {
			best = &trials[i]
		}
	}
	if best == nil {
		return nil, core.ErrTrialNotFound
	}
	out := *best
	return &out, nil
}
