package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		slog.Info("No database configured, skipping migrations")
		return nil
	}
	slog.Info("Starting database migrations")

	for _, m := range Migrations() {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the schema steps in application order.
func Migrations() []Migration {
	return []Migration{
		{
			Name: "create_export_jobs",
			SQL: `
				CREATE TABLE IF NOT EXISTS export_jobs (
					id          UUID PRIMARY KEY,
					document_id TEXT NOT NULL,
					backend     TEXT NOT NULL,
					template_id TEXT NOT NULL,
					filename    TEXT NOT NULL,
					status      TEXT NOT NULL,
					error       TEXT NOT NULL DEFAULT '',
					size_bytes  INTEGER NOT NULL DEFAULT 0,
					cache_hit   BOOLEAN NOT NULL DEFAULT FALSE,
					metadata    JSONB NOT NULL DEFAULT '{}'::jsonb,
					created_at  TIMESTAMPTZ NOT NULL,
					updated_at  TIMESTAMPTZ NOT NULL
				);
			`,
		},
		{
			Name: "index_export_jobs_document",
			SQL:  `CREATE INDEX IF NOT EXISTS export_jobs_document_created_idx ON export_jobs (document_id, created_at DESC);`,
		},
	}
}
