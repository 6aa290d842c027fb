package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS fragments (
					id TEXT PRIMARY KEY,
					text TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS classifications (
					fragment_id TEXT PRIMARY KEY,
					canonical_path TEXT NOT NULL,
					candidate_paths TEXT,
					confidence REAL NOT NULL,
					method TEXT NOT NULL,
					requires_review INTEGER NOT NULL DEFAULT 0,
					drift_detected INTEGER NOT NULL DEFAULT 0,
					classified_at DATETIME NOT NULL,
					FOREIGN KEY (fragment_id) REFERENCES fragments(id)
				)`,
				`CREATE INDEX idx_classifications_method ON classifications(method)`,

				`CREATE TABLE IF NOT EXISTS classification_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					fragment_id TEXT NOT NULL,
					canonical_path TEXT NOT NULL,
					confidence REAL NOT NULL,
					method TEXT NOT NULL,
					recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS review_tasks (
					id TEXT PRIMARY KEY,
					fragment_id TEXT NOT NULL,
					suggested_path TEXT NOT NULL,
					alternative_paths TEXT,
					confidence REAL NOT NULL,
					priority TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'pending',
					approved_path TEXT,
					confidence_override REAL,
					created_at DATETIME NOT NULL,
					completed_at DATETIME,
					FOREIGN KEY (fragment_id) REFERENCES fragments(id)
				)`,
				`CREATE INDEX idx_review_tasks_pending ON review_tasks(status, confidence, created_at)`,
				`CREATE INDEX idx_review_tasks_fragment ON review_tasks(fragment_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Taxonomy leaf snapshots",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS taxonomy_leaves (
					version TEXT NOT NULL,
					path TEXT NOT NULL,
					embedding TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (version, path)
				)`,
				`CREATE INDEX idx_taxonomy_leaves_version ON taxonomy_leaves(version)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		slog.Info("Applying migration", "version", m.Version, "description", m.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
