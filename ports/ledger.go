package ports

import (
	"context"

	"stablebin/domain/core"
	"stablebin/domain/stability"
)

// TrialWriterPort provides append-only write access to the trial history.
// Appending is the ONLY mutation; a stored trial is never updated.
type TrialWriterPort interface {
	AppendTrial(ctx context.Context, trial stability.Trial) error
}

// TrialReaderPort provides read-only access to stored trials for post-hoc
// reporting.
type TrialReaderPort interface {
	GetTrial(ctx context.Context, id core.TrialID) (*stability.Trial, error)
	ListTrialsByRun(ctx context.Context, runID core.RunID) ([]stability.Trial, error)
	BestTrial(ctx context.Context, runID core.RunID) (*stability.Trial, error)
}

// TrialLedgerPort combines read and write access.
type TrialLedgerPort interface {
	TrialWriterPort
	TrialReaderPort
}
