package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestReplaceFeatures(t *testing.T) {
	db := newTestDB(t)

	seedFeatures(t, db, []*Feature{
		{Priority: 1, Category: "Audio System", Name: "Mixer", Steps: []string{"wire bus"}},
		{Priority: 2, Category: "Audio System", Name: "Sampler", Steps: []string{"load banks"}},
		{Priority: 3, Category: "Audio System", Name: "Sequencer", Steps: []string{"clock"}},
		{Priority: 4, Category: "Scoring", Name: "Combo meter", Steps: []string{"chain hits"}},
		{Priority: 5, Category: "Scoring", Name: "Multiplier", Steps: []string{"stack bonus"}},
		{Priority: 6, Category: "Scoring", Name: "Leaderboard", Steps: []string{"rank players"}},
	})

	replacement := []*Feature{
		{ID: 1, Priority: 1, Category: "Audio System", Name: "Implement Audio Subsystem", Steps: []string{"[○] Mixer", "    - wire bus"}},
		{ID: 4, Priority: 4, Category: "Scoring", Name: "Implement Scoring Subsystem", Steps: []string{"[○] Combo meter", "    - chain hits"}},
	}

	backup, err := db.ReplaceFeatures(replacement)
	if err != nil {
		t.Fatalf("ReplaceFeatures() returned error: %v", err)
	}
	if !strings.HasPrefix(backup, backupPrefix) {
		t.Errorf("ReplaceFeatures() backup = %q, want %q prefix", backup, backupPrefix)
	}

	got, err := db.AllFeatures()
	if err != nil {
		t.Fatalf("AllFeatures() after swap returned error: %v", err)
	}
	if diff := cmp.Diff(replacement, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AllFeatures() after swap mismatch (-want +got):\n%s", diff)
	}

	// Previous contents are retained under the backup name
	tables, err := db.BackupTables()
	if err != nil {
		t.Fatalf("BackupTables() returned error: %v", err)
	}
	if len(tables) != 1 || tables[0] != backup {
		t.Errorf("BackupTables() = %v, want [%s]", tables, backup)
	}
	count, err := db.BackupCount(backup)
	if err != nil {
		t.Fatalf("BackupCount() returned error: %v", err)
	}
	if count != 6 {
		t.Errorf("BackupCount() = %d, want 6", count)
	}
}

func TestReplaceFeatures_RollbackOnPopulateFailure(t *testing.T) {
	db := newTestDB(t)

	seedFeatures(t, db, []*Feature{
		{Priority: 1, Category: "Scoring", Name: "a", Steps: []string{"s1"}},
		{Priority: 2, Category: "Scoring", Name: "b", Steps: []string{"s2"}},
		{Priority: 3, Category: "Scoring", Name: "c", Steps: []string{"s3"}},
	})

	before, err := db.AllFeatures()
	if err != nil {
		t.Fatalf("AllFeatures() returned error: %v", err)
	}

	// Two rows claiming the same id must abort the swap
	_, err = db.ReplaceFeatures([]*Feature{
		{ID: 1, Priority: 1, Category: "Scoring", Name: "merged"},
		{ID: 1, Priority: 2, Category: "Scoring", Name: "duplicate"},
	})
	if err == nil {
		t.Fatal("ReplaceFeatures() with duplicate ids succeeded, want error")
	}

	var migErr *MigrationError
	if !errors.As(err, &migErr) {
		t.Fatalf("ReplaceFeatures() error = %T, want *MigrationError", err)
	}
	if migErr.Step != "populate" {
		t.Errorf("MigrationError.Step = %q, want %q", migErr.Step, "populate")
	}
	if migErr.Unwrap() == nil {
		t.Error("MigrationError.Unwrap() = nil, want cause")
	}

	after, err := db.AllFeatures()
	if err != nil {
		t.Fatalf("AllFeatures() after failed swap returned error: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("features table changed by failed swap (-before +after):\n%s", diff)
	}

	tables, err := db.BackupTables()
	if err != nil {
		t.Fatalf("BackupTables() returned error: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("BackupTables() after failed swap = %v, want none", tables)
	}

	// The staging table must not survive the rollback
	var staged int
	if err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		stagingTable).Scan(&staged); err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	if staged != 0 {
		t.Error("staging table survived a rolled back swap")
	}
}

func TestReplaceFeatures_RollbackOnStageFailure(t *testing.T) {
	db := newTestDB(t)

	seedFeatures(t, db, []*Feature{
		{Priority: 1, Category: "Scoring", Name: "a"},
		{Priority: 2, Category: "Scoring", Name: "b"},
	})

	// A leftover staging table makes the stage step fail
	if _, err := db.conn.Exec(`CREATE TABLE ` + stagingTable + ` (x INTEGER)`); err != nil {
		t.Fatalf("failed to create blocking table: %v", err)
	}

	before, err := db.AllFeatures()
	if err != nil {
		t.Fatalf("AllFeatures() returned error: %v", err)
	}

	_, err = db.ReplaceFeatures([]*Feature{{ID: 1, Priority: 1, Category: "Scoring", Name: "merged"}})
	var migErr *MigrationError
	if !errors.As(err, &migErr) {
		t.Fatalf("ReplaceFeatures() error = %v, want *MigrationError", err)
	}
	if migErr.Step != "stage" {
		t.Errorf("MigrationError.Step = %q, want %q", migErr.Step, "stage")
	}

	after, err := db.AllFeatures()
	if err != nil {
		t.Fatalf("AllFeatures() after failed swap returned error: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("features table changed by failed swap (-before +after):\n%s", diff)
	}
}

func TestBackupTables_Empty(t *testing.T) {
	db := newTestDB(t)

	tables, err := db.BackupTables()
	if err != nil {
		t.Fatalf("BackupTables() returned error: %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("BackupTables() on fresh database = %v, want none", tables)
	}
}

func TestBackupCount_UnknownTable(t *testing.T) {
	db := newTestDB(t)

	_, err := db.BackupCount("features")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("BackupCount() error = %v, want ErrNotFound", err)
	}
}
