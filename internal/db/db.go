// Package db provides SQLite storage for the x402Arcade feature tracker.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/x402arcade/featdb/internal/log"
)

// ErrNotFound is returned when a requested record is not found.
var ErrNotFound = errors.New("record not found")

// ErrSchema is returned when the database exists but its features table does
// not carry the columns this tool expects.
var ErrSchema = errors.New("unexpected database schema")

// DB holds the database connection and provides methods for data access.
type DB struct {
	conn *sql.DB
}

// New creates a new database connection.
// If the path is ":memory:", an in-memory database is created.
// Otherwise, the parent directory is created if it doesn't exist.
func New(path string) (*DB, error) {
	// Create parent directory if needed (not for in-memory DB)
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; a pool of one also keeps in-memory
	// databases on the same connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("failed to close connection after ping failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn}

	// Run migrations automatically
	if err := db.Migrate(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("failed to close connection after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Refuse to operate on a features table we don't understand
	if err := db.verifySchema(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Warn("failed to close connection after schema check failure", "error", closeErr)
		}
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// =============================================================================
// Feature Methods
// =============================================================================

const featureColumns = `id, priority, category, name, description, steps, passes, in_progress, blocked_by_intervention_id, deferred`

// AllFeatures returns every feature ordered by priority, with the row id as
// the insertion-order tie break.
func (d *DB) AllFeatures() ([]*Feature, error) {
	rows, err := d.conn.Query(`
		SELECT ` + featureColumns + `
		FROM features ORDER BY priority, id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "AllFeatures", "error", closeErr)
		}
	}()

	var features []*Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// FeaturesByCategory returns all features in a category ordered by priority.
func (d *DB) FeaturesByCategory(category string) ([]*Feature, error) {
	rows, err := d.conn.Query(`
		SELECT `+featureColumns+`
		FROM features WHERE category = ? ORDER BY priority, id`, category)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "FeaturesByCategory", "error", closeErr)
		}
	}()

	var features []*Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// GetFeature retrieves a feature by ID.
func (d *DB) GetFeature(id int64) (*Feature, error) {
	row := d.conn.QueryRow(`
		SELECT `+featureColumns+`
		FROM features WHERE id = ?`, id)
	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// InsertFeatures inserts multiple features in a single transaction.
// Row ids continue from the current maximum and are written back to the
// models. Ids are assigned here rather than by autoincrement because tables
// promoted by ReplaceFeatures carry no rowid alias.
func (d *DB) InsertFeatures(features []*Feature) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Warn("failed to rollback transaction", "operation", "InsertFeatures", "error", rbErr)
		}
	}()

	var maxID int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM features`).Scan(&maxID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO features (id, priority, category, name, description, steps, passes, in_progress, blocked_by_intervention_id, deferred)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn("failed to close statement", "operation", "InsertFeatures", "error", closeErr)
		}
	}()

	for _, f := range features {
		steps, err := marshalSteps(f.Steps)
		if err != nil {
			return err
		}
		maxID++
		f.ID = maxID
		if _, err := stmt.Exec(
			f.ID, f.Priority, f.Category, f.Name, f.Description, steps,
			f.Passes, f.InProgress, f.BlockedBy, f.Deferred,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountFeatures returns the number of rows in the features table.
func (d *DB) CountFeatures() (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM features`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MaxPriority returns the highest priority currently in the features table.
// Returns 0 if the table is empty.
func (d *DB) MaxPriority() (int, error) {
	var max sql.NullInt64
	err := d.conn.QueryRow(`SELECT MAX(priority) FROM features`).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

// Categories returns the distinct category names in lexicographic order.
func (d *DB) Categories() ([]string, error) {
	rows, err := d.conn.Query(`SELECT DISTINCT category FROM features ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "Categories", "error", closeErr)
		}
	}()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanFeature.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFeature(s scanner) (*Feature, error) {
	f := &Feature{}
	var steps string
	var blockedBy sql.NullInt64
	if err := s.Scan(
		&f.ID, &f.Priority, &f.Category, &f.Name, &f.Description,
		&steps, &f.Passes, &f.InProgress, &blockedBy, &f.Deferred,
	); err != nil {
		return nil, err
	}
	if blockedBy.Valid {
		f.BlockedBy = &blockedBy.Int64
	}
	parsed, err := unmarshalSteps(steps)
	if err != nil {
		return nil, err
	}
	f.Steps = parsed
	return f, nil
}

// marshalSteps encodes a step list as the JSON array stored in the steps column.
func marshalSteps(steps []string) (string, error) {
	if len(steps) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("failed to encode steps: %w", err)
	}
	return string(data), nil
}

// unmarshalSteps decodes the steps column. A row whose steps payload is not a
// JSON string array is treated as a schema violation.
func unmarshalSteps(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var steps []string
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, fmt.Errorf("%w: malformed steps payload: %v", ErrSchema, err)
	}
	return steps, nil
}

// =============================================================================
// Consolidation Run Methods
// =============================================================================

// CreateRun inserts a new consolidation run record.
func (d *DB) CreateRun(run *Run) error {
	run.StartedAt = time.Now()
	if run.Status == "" {
		run.Status = RunRunning
	}

	_, err := d.conn.Exec(`
		INSERT INTO consolidation_runs (id, before_count, after_count, steps_before, steps_after, status, backup_table, detail, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Before, run.After, run.StepsBefore, run.StepsAfter,
		run.Status, run.BackupTable, run.Detail, run.StartedAt, run.FinishedAt,
	)
	return err
}

// CompleteRun marks a run as finished with the given outcome.
func (d *DB) CompleteRun(id string, status RunStatus, backupTable, detail string) error {
	result, err := d.conn.Exec(`
		UPDATE consolidation_runs SET status = ?, backup_table = ?, detail = ?, finished_at = ? WHERE id = ?`,
		status, backupTable, detail, time.Now(), id,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRun retrieves a run by ID.
func (d *DB) GetRun(id string) (*Run, error) {
	run := &Run{}
	err := d.conn.QueryRow(`
		SELECT id, before_count, after_count, steps_before, steps_after, status, backup_table, detail, started_at, finished_at
		FROM consolidation_runs WHERE id = ?`, id,
	).Scan(
		&run.ID, &run.Before, &run.After, &run.StepsBefore, &run.StepsAfter,
		&run.Status, &run.BackupTable, &run.Detail, &run.StartedAt, &run.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// RecentRuns returns the most recent runs, newest first.
func (d *DB) RecentRuns(limit int) ([]*Run, error) {
	rows, err := d.conn.Query(`
		SELECT id, before_count, after_count, steps_before, steps_after, status, backup_table, detail, started_at, finished_at
		FROM consolidation_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", "operation", "RecentRuns", "error", closeErr)
		}
	}()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(
			&r.ID, &r.Before, &r.After, &r.StepsBefore, &r.StepsAfter,
			&r.Status, &r.BackupTable, &r.Detail, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
