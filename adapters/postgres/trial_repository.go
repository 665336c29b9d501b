package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"stablebin/domain/core"
	"stablebin/domain/stability"
	"stablebin/ports"
)

// trialRepository implements the TrialLedgerPort on Postgres
type trialRepository struct {
	db *sqlx.DB
}

// NewTrialRepository creates a new trial ledger repository
func NewTrialRepository(db *sqlx.DB) ports.TrialLedgerPort {
	return &trialRepository{db: db}
}

// AppendTrial inserts a trial row. Rows are append-only; there is no update
// path by design.
func (r *trialRepository) AppendTrial(ctx context.Context, trial stability.Trial) error {
	query := `INSERT INTO trials (
		id, run_id, number, feature, max_bins, min_bin_size, min_event_rate_diff,
		score, separability, iv, ks, bins, failed, failure_reason, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	)`

	var score sql.NullFloat64
	if !trial.Failed {
		score = sql.NullFloat64{Float64: trial.Score, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		trial.ID, trial.RunID, trial.Number, trial.Feature,
		trial.Params.MaxBins, trial.Params.MinBinSize, trial.Params.MinEventRateDiff,
		score, trial.Separability, trial.IV, trial.KS, trial.Bins,
		trial.Failed, trial.FailureReason, trial.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to append trial: %w", err)
	}
	return nil
}

// GetTrial retrieves a trial by its ID
func (r *trialRepository) GetTrial(ctx context.Context, id core.TrialID) (*stability.Trial, error) {
	query := selectColumns + ` FROM trials WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	trial, err := scanTrial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrTrialNotFound
	}
	return trial, err
}

// ListTrialsByRun returns a run's trials ordered by trial number
func (r *trialRepository) ListTrialsByRun(ctx context.Context, runID core.RunID) ([]stability.Trial, error) {
	query := selectColumns + ` FROM trials WHERE run_id = $1 ORDER BY number ASC`
	rows, err := r.db.QueryxContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trials: %w", err)
	}
	defer rows.Close()

	var out []stability.Trial
	for rows.Next() {
		trial, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *trial)
	}
	return out, rows.Err()
}

// BestTrial returns the highest-scoring successful trial of a run
func (r *trialRepository) BestTrial(ctx context.Context, runID core.RunID) (*stability.Trial, error) {
	query := selectColumns + ` FROM trials
		WHERE run_id = $1 AND failed = FALSE AND score IS NOT NULL
		ORDER BY score DESC, number ASC LIMIT 1`
	row := r.db.QueryRowxContext(ctx, query, runID)
	trial, err := scanTrial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrTrialNotFound
	}
	return trial, err
}

const selectColumns = `SELECT
	id, run_id, number, feature, max_bins, min_bin_size, min_event_rate_diff,
	score, separability, iv, ks, bins, failed, failure_reason, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrial(row rowScanner) (*stability.Trial, error) {
	var (
		trial     stability.Trial
		score     sql.NullFloat64
		createdAt time.Time
	)
	err := row.Scan(
		&trial.ID, &trial.RunID, &trial.Number, &trial.Feature,
		&trial.Params.MaxBins, &trial.Params.MinBinSize, &trial.Params.MinEventRateDiff,
		&score, &trial.Separability, &trial.IV, &trial.KS, &trial.Bins,
		&trial.Failed, &trial.FailureReason, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan trial: %w", err)
	}

	if score.Valid {
		trial.Score = score.Float64
	} else {
		trial.Score = math.Inf(-1)
	}
	trial.CreatedAt = core.NewTimestamp(createdAt)
	return &trial, nil
}
