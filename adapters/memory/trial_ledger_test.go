package memory

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stablebin/domain/core"
	"stablebin/domain/stability"
)

func newTrial(runID core.RunID, number int, score float64, failed bool) stability.Trial {
	return stability.Trial{
		ID:        core.TrialID(core.NewID()),
		RunID:     runID,
		Number:    number,
		Feature:   core.FeatureKey("income"),
		Score:     score,
		Failed:    failed,
		CreatedAt: core.Now(),
	}
}

func TestTrialLedger_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	ledger := NewTrialLedger()
	runID := core.RunID(core.NewID())

	trial := newTrial(runID, 0, 0.42, false)
	require.NoError(t, ledger.AppendTrial(ctx, trial))

	got, err := ledger.GetTrial(ctx, trial.ID)
	require.NoError(t, err)
	assert.Equal(t, trial.ID, got.ID)
	assert.Equal(t, 0.42, got.Score)
}

func TestTrialLedger_GetMissing(t *testing.T) {
	ledger := NewTrialLedger()

	_, err := ledger.GetTrial(context.Background(), core.TrialID(core.NewID()))
	assert.ErrorIs(t, err, core.ErrTrialNotFound)
}

func TestTrialLedger_ListOrdersByNumber(t *testing.T) {
	ctx := context.Background()
	ledger := NewTrialLedger()
	runID := core.RunID(core.NewID())
	otherRun := core.RunID(core.NewID())

	require.NoError(t, ledger.AppendTrial(ctx, newTrial(runID, 2, 0.3, false)))
	require.NoError(t, ledger.AppendTrial(ctx, newTrial(runID, 0, 0.1, false)))
	require.NoError(t, ledger.AppendTrial(ctx, newTrial(otherRun, 0, 0.9, false)))
	require.NoError(t, ledger.AppendTrial(ctx, newTrial(runID, 1, 0.2, false)))

	trials, err := ledger.ListTrialsByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, trials, 3)
	for i, trial := range trials {
		assert.Equal(t, i, trial.Number)
		assert.Equal(t, runID, trial.RunID)
	}
}

func TestTrialLedger_BestSkipsFailed(t *testing.T) {
	ctx := context.Background()
	ledger := NewTrialLedger()
	runID := core.RunID(core.NewID())

	require.NoError(t, ledger.AppendTrial(ctx, newTrial(runID, 0, 0.5, false)))
	require.NoError(t, ledger.AppendTrial(ctx, newTrial(runID, 1, math.Inf(-1), true)))
	require.NoError(t, ledger.AppendTrial(ctx, newTrial(runID, 2, 0.8, false)))

	best, err := ledger.BestTrial(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, best.Number)
	assert.Equal(t, 0.8, best.Score)
}

func TestTrialLedger_BestWithOnlyFailures(t *testing.T) {
	ctx := context.Background()
	ledger := NewTrialLedger()
	runID := core.RunID(core.NewID())

	require.NoError(t, ledger.AppendTrial(ctx, newTrial(runID, 0, math.Inf(-1), true)))

	_, err := ledger.BestTrial(ctx, runID)
	assert.ErrorIs(t, err, core.ErrTrialNotFound)
}

func TestTrialLedger_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	ledger := NewTrialLedger()
	runID := core.RunID(core.NewID())

	var wg sync.WaitGroup
	for n := 0; n < 32; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = ledger.AppendTrial(ctx, newTrial(runID, n, float64(n), false))
		}(n)
	}
	wg.Wait()

	trials, err := ledger.ListTrialsByRun(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, trials, 32)
}
