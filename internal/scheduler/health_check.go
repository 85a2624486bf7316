package scheduler

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// HealthCheckJob runs SQLite integrity checks and checkpoints the WAL
// so the refresh job never compounds on a corrupted store.
type HealthCheckJob struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(db *sql.DB, log zerolog.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		db:  db,
		log: log.With().Str("job", "health_check").Logger(),
	}
}

// Name implements Job
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run implements Job
func (j *HealthCheckJob) Run() error {
	var result string
	if err := j.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed to run: %w", err)
	}
	if result != "ok" {
		j.log.Error().Str("result", result).Msg("Database integrity check failed")
		return fmt.Errorf("database integrity check failed: %s", result)
	}

	// TRUNCATE folds the WAL back into the main file; harmless on a
	// non-WAL connection.
	if _, err := j.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	j.log.Debug().Msg("Database health check passed")
	return nil
}
