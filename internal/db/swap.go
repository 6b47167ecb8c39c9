// Package db provides SQLite storage for the x402Arcade feature tracker.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/x402arcade/featdb/internal/log"
)

// stagingTable is the scratch table the swap builds before promoting it.
const stagingTable = "features_staging"

// backupPrefix is the prefix of retired feature tables. Backups are never
// dropped by this tool; cleaning them up is a deliberate operator action.
const backupPrefix = "features_backup_"

// MigrationError reports a failed table swap. When it is returned the live
// features table has not been modified.
type MigrationError struct {
	Step string // "stage", "populate", or "swap"
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("table swap failed during %s: %v", e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// ReplaceFeatures atomically replaces the contents of the features table.
//
// The replacement runs as a single transaction in three steps: stage (create
// an empty table with the live table's shape), populate (insert the new
// rows), and swap (rename the live table to a timestamped backup, then
// promote the staging table). If any step fails the transaction is rolled
// back and the live table is left byte-for-byte as it was.
//
// Returns the name of the backup table holding the previous contents.
func (d *DB) ReplaceFeatures(features []*Feature) (string, error) {
	backup := backupPrefix + time.Now().Format("20060102_150405")

	tx, err := d.conn.Begin()
	if err != nil {
		return "", &MigrationError{Step: "stage", Err: err}
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Warn("failed to rollback transaction", "operation", "ReplaceFeatures", "error", rbErr)
		}
	}()

	if _, err := tx.Exec(`CREATE TABLE ` + stagingTable + ` AS SELECT * FROM features WHERE 0`); err != nil {
		return "", &MigrationError{Step: "stage", Err: err}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO ` + stagingTable + ` (id, priority, category, name, description, steps, passes, in_progress, blocked_by_intervention_id, deferred)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", &MigrationError{Step: "populate", Err: err}
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn("failed to close statement", "operation", "ReplaceFeatures", "error", closeErr)
		}
	}()

	seen := make(map[int64]bool, len(features))
	for _, f := range features {
		if seen[f.ID] {
			return "", &MigrationError{Step: "populate", Err: fmt.Errorf("duplicate feature id %d", f.ID)}
		}
		seen[f.ID] = true

		steps, err := marshalSteps(f.Steps)
		if err != nil {
			return "", &MigrationError{Step: "populate", Err: err}
		}
		if _, err := stmt.Exec(
			f.ID, f.Priority, f.Category, f.Name, f.Description, steps,
			f.Passes, f.InProgress, f.BlockedBy, f.Deferred,
		); err != nil {
			return "", &MigrationError{Step: "populate", Err: err}
		}
	}

	if _, err := tx.Exec(`ALTER TABLE features RENAME TO ` + backup); err != nil {
		return "", &MigrationError{Step: "swap", Err: err}
	}
	if _, err := tx.Exec(`ALTER TABLE ` + stagingTable + ` RENAME TO features`); err != nil {
		return "", &MigrationError{Step: "swap", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return "", &MigrationError{Step: "swap", Err: err}
	}

	log.Debug("replaced features table", "rows", len(features), "backup", backup)
	return backup, nil
}

// BackupTables returns the names of retained backup tables, newest first.
func (d *DB) BackupTables() ([]string, error) {
	rows, err := d.conn.Query(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name LIKE ?
		ORDER BY name DESC`, backupPrefix+"%")
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "BackupTables", "error", closeErr)
		}
	}()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// BackupCount returns the number of rows in a backup table. The name must be
// one returned by BackupTables.
func (d *DB) BackupCount(table string) (int, error) {
	rows, err := d.conn.Query(`
		SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? AND name LIKE ?`,
		table, backupPrefix+"%")
	if err != nil {
		return 0, err
	}
	found := rows.Next()
	if closeErr := rows.Close(); closeErr != nil {
		log.Warn("failed to close rows", "operation", "BackupCount", "error", closeErr)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNotFound
	}

	var count int
	if err := d.conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
