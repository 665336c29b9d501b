package postgres

import (
	"github.com/jmoiron/sqlx"
)

// trialsSchema is the append-only search history table. Scores are nullable:
// failed trials store NULL plus a failure reason instead of the -Inf sentinel,
// which Postgres floats cannot hold through JSON round-trips.
const trialsSchema = `
CREATE TABLE IF NOT EXISTS trials (
	id                  TEXT PRIMARY KEY,
	run_id              TEXT NOT NULL,
	number              INTEGER NOT NULL,
	feature             TEXT NOT NULL,
	max_bins            INTEGER NOT NULL,
	min_bin_size        DOUBLE PRECISION NOT NULL,
	min_event_rate_diff DOUBLE PRECISION NOT NULL,
	score               DOUBLE PRECISION,
	separability        DOUBLE PRECISION NOT NULL DEFAULT 0,
	iv                  DOUBLE PRECISION NOT NULL DEFAULT 0,
	ks                  DOUBLE PRECISION NOT NULL DEFAULT 0,
	bins                INTEGER NOT NULL DEFAULT 0,
	failed              BOOLEAN NOT NULL DEFAULT FALSE,
	failure_reason      TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL,
	UNIQUE (run_id, number)
);
CREATE INDEX IF NOT EXISTS idx_trials_run_id ON trials (run_id);
`

// Migrate creates the trials table if it does not exist.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(trialsSchema)
	return err
}
