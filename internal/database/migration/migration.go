// Package migration creates the artifact registry schema.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"pdfapi/internal/logging"
)

type step struct {
	Name string
	SQL  string
}

// sentinel is the table whose presence means the schema is in place.
const sentinel = "public.artifacts"

var steps = []step{
	{
		Name: "create_table_artifacts",
		SQL: `CREATE TABLE IF NOT EXISTS artifacts (
  id           UUID        PRIMARY KEY,
  filename     TEXT        NOT NULL,
  operation    TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  request_id   TEXT,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_artifacts_filename",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_artifacts_filename ON artifacts (filename);`,
	},
	{
		Name: "create_index_artifacts_operation",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_artifacts_operation ON artifacts (operation);`,
	},
	{
		Name: "create_index_artifacts_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts (created_at DESC, id DESC);`,
	},
}

// EnsureMigrated applies the schema unless the sentinel table already exists.
// Every step is idempotent, so a run interrupted half way is safe to repeat.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	start := time.Now()
	log = log.With(logging.KeyComponent, "database")

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinel).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			logging.KeyError, err.Error(),
			logging.KeyDuration, time.Since(start).Milliseconds())
		return fmt.Errorf("check sentinel table: %w", err)
	}
	if exists {
		log.Info("db_migration_skip", "reason", "schema already exists")
		return nil
	}

	log.Info("db_migration_start", "steps", len(steps))
	for _, s := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, s.SQL); err != nil {
			log.Error("db_migration_failed",
				"migration_step", s.Name,
				logging.KeyError, err.Error(),
				logging.KeyDuration, time.Since(start).Milliseconds())
			return fmt.Errorf("migration step %s failed: %w", s.Name, err)
		}
		log.Debug("db_migration_step",
			"migration_step", s.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds())
	}

	log.Info("db_migration_success", logging.KeyDuration, time.Since(start).Milliseconds())
	return nil
}
