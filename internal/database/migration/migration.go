package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger().WithField("component", "database")

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_eta_invoices",
		SQL: `CREATE TABLE IF NOT EXISTS eta_invoices (
  uuid                   TEXT             PRIMARY KEY,
  submission_uuid        TEXT             NOT NULL DEFAULT '',
  long_id                TEXT             NOT NULL DEFAULT '',
  internal_id            TEXT             NOT NULL,
  document_type          CHAR(1)          NOT NULL CHECK (document_type IN ('I', 'C', 'D')),
  date_time_issued       TIMESTAMPTZ      NOT NULL,
  taxpayer_activity_code TEXT             NOT NULL DEFAULT '',
  issuer_id              TEXT             NOT NULL DEFAULT '',
  issuer_name            TEXT             NOT NULL DEFAULT '',
  receiver_id            TEXT             NOT NULL DEFAULT '',
  receiver_name          TEXT             NOT NULL DEFAULT '',
  total_sales_amount     DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_discount_amount  DOUBLE PRECISION NOT NULL DEFAULT 0,
  net_amount             DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_tax              DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_amount           DOUBLE PRECISION NOT NULL DEFAULT 0,
  status                 TEXT             NOT NULL,
  full_document          JSONB            NOT NULL DEFAULT '{}'::jsonb,
  raw_object_key         TEXT             NOT NULL DEFAULT '',
  created_at             TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at             TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_eta_invoices_receiver_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_eta_invoices_receiver_id ON eta_invoices (receiver_id);`,
	},
	{
		Name: "create_index_eta_invoices_date_time_issued",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_eta_invoices_date_time_issued ON eta_invoices (date_time_issued DESC);`,
	},
	{
		Name: "create_index_eta_invoices_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_eta_invoices_status ON eta_invoices (status);`,
	},
}

// EnsureMigrated checks if the 'eta_invoices' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()
	entry := log.WithField("db_host", dbHost)

	entry.WithField("event", "db_migration_check").Info("checking schema")

	var exists bool
	query := "SELECT to_regclass('public.eta_invoices') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		entry.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	entry.WithField("event", "db_migration_start").Info("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		stepEntry := entry.WithField("migration_step", step.Name)
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			stepEntry.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		stepEntry.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Info("migration step applied")
	}

	entry.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema migrated")

	return nil
}
