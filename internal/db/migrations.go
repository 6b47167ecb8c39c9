// Package db provides SQLite storage for the x402Arcade feature tracker.
package db

import (
	"fmt"

	"github.com/x402arcade/featdb/internal/log"
)

// schema is the SQL schema for the feature database.
const schema = `
-- Features table
CREATE TABLE IF NOT EXISTS features (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    priority INTEGER NOT NULL,
    category TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    steps TEXT NOT NULL DEFAULT '[]',
    passes INTEGER NOT NULL DEFAULT 0,
    in_progress INTEGER NOT NULL DEFAULT 0,
    blocked_by_intervention_id INTEGER,
    deferred INTEGER NOT NULL DEFAULT 0
);

-- Consolidation run history
CREATE TABLE IF NOT EXISTS consolidation_runs (
    id TEXT PRIMARY KEY,
    before_count INTEGER NOT NULL,
    after_count INTEGER NOT NULL,
    steps_before INTEGER NOT NULL,
    steps_after INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'running',
    backup_table TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    started_at DATETIME NOT NULL,
    finished_at DATETIME
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_runs_started ON consolidation_runs(started_at);
`

// requiredColumns are the columns every usable features table carries.
// Databases produced by older tooling are upgraded by runMigrations first;
// anything still missing after that is treated as a foreign table.
var requiredColumns = []string{
	"id", "priority", "category", "name", "description",
	"steps", "passes", "in_progress", "blocked_by_intervention_id", "deferred",
}

// Migrate runs all database migrations to ensure the schema is up to date.
func (d *DB) Migrate() error {
	// Create tables if they don't exist
	if _, err := d.conn.Exec(schema); err != nil {
		return err
	}

	// Run incremental migrations for existing databases
	return d.runMigrations()
}

// runMigrations applies incremental schema changes for existing databases.
func (d *DB) runMigrations() error {
	// Migration: Add blocked_by_intervention_id column to features table
	if exists, err := d.columnExists("features", "blocked_by_intervention_id"); err != nil {
		return err
	} else if !exists {
		if _, err := d.conn.Exec(`
			ALTER TABLE features ADD COLUMN blocked_by_intervention_id INTEGER;
		`); err != nil {
			return err
		}
	}

	// Migration: Add deferred column to features table
	if exists, err := d.columnExists("features", "deferred"); err != nil {
		return err
	} else if !exists {
		if _, err := d.conn.Exec(`
			ALTER TABLE features ADD COLUMN deferred INTEGER NOT NULL DEFAULT 0;
		`); err != nil {
			return err
		}
	}

	return nil
}

// verifySchema checks that the features table carries every required column.
func (d *DB) verifySchema() error {
	for _, column := range requiredColumns {
		exists, err := d.columnExists("features", column)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: features table is missing column %q", ErrSchema, column)
		}
	}
	return nil
}

// columnExists checks if a column exists in the specified table.
func (d *DB) columnExists(table, column string) (bool, error) {
	rows, err := d.conn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "columnExists", "error", closeErr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
