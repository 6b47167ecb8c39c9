package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/x402arcade/featdb/internal/consolidate"
	"github.com/x402arcade/featdb/internal/db"
	"github.com/x402arcade/featdb/internal/seed"
)

// executeCommand is a test helper that executes a cobra command with args.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

const seedDoc = `features:
  - category: Audio System
    name: Mixer bus routing
    steps:
      - Create bus graph
      - Route channels
  - category: Audio System
    name: Reverb send
    steps:
      - Wire send knob
  - category: Audio System
    name: Ducking sidechain
  - category: Audio System
    name: Limiter on master
  - category: Scoring
    name: Combo multiplier
    steps:
      - Track streak
  - category: Scoring
    name: Leaderboard sync
  - category: Scoring
    name: Daily challenge
  - category: Scoring
    name: Ghost replays
`

func seedTestDB(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "features.db")
	seedPath := filepath.Join(tmpDir, "seed.yaml")

	if err := os.WriteFile(seedPath, []byte(seedDoc), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	if _, err := executeCommand(newRootCmd(), "seed", "--db", dbPath, seedPath); err != nil {
		t.Fatalf("seed command returned error: %v", err)
	}

	return dbPath
}

func openTestDB(t *testing.T, path string) *db.DB {
	t.Helper()

	database, err := db.New(path)
	if err != nil {
		t.Fatalf("db.New() returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return database
}

// =============================================================================
// Command structure
// =============================================================================

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	subNames := make(map[string]bool)
	for _, sub := range root.Commands() {
		subNames[sub.Name()] = true
	}

	for _, want := range []string{"consolidate", "seed", "export", "list", "runs", "browse"} {
		if !subNames[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestRootCmd_Help(t *testing.T) {
	output, err := executeCommand(newRootCmd(), "--help")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(output, "featdb") {
		t.Error("Help should contain 'featdb'")
	}
	if !strings.Contains(output, "--db") {
		t.Error("Help should contain '--db' flag")
	}
	if !strings.Contains(output, "consolidate") {
		t.Error("Help should list the consolidate subcommand")
	}
}

func TestConsolidateCmd_Flags(t *testing.T) {
	cmd := consolidateCmd()

	for _, name := range []string{"dry-run", "execute", "target-min", "target-max"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("consolidate command missing %q flag", name)
		}
	}

	minFlag := cmd.Flags().Lookup("target-min")
	if minFlag.DefValue != "0" {
		t.Errorf("target-min default = %q, want %q", minFlag.DefValue, "0")
	}
}

func TestConsolidateCmd_RequiresMode(t *testing.T) {
	_, err := executeCommand(newRootCmd(), "consolidate")
	if err == nil {
		t.Error("expected error when neither --dry-run nor --execute is given")
	}
}

func TestConsolidateCmd_ModesAreExclusive(t *testing.T) {
	_, err := executeCommand(newRootCmd(), "consolidate", "--dry-run", "--execute")
	if err == nil {
		t.Error("expected error when both --dry-run and --execute are given")
	}
}

func TestExportCmd_Flags(t *testing.T) {
	cmd := exportCmd()

	outputFlag := cmd.Flags().Lookup("output")
	if outputFlag == nil {
		t.Fatal("export command missing 'output' flag")
	}
	if outputFlag.Shorthand != "o" {
		t.Errorf("output flag shorthand = %q, want %q", outputFlag.Shorthand, "o")
	}
}

func TestRunsCmd_Flags(t *testing.T) {
	cmd := runsCmd()

	limitFlag := cmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("runs command missing 'limit' flag")
	}
	if limitFlag.DefValue != "10" {
		t.Errorf("limit flag default = %q, want %q", limitFlag.DefValue, "10")
	}
}

func TestStatusMarker(t *testing.T) {
	blocked := int64(3)
	tests := []struct {
		name    string
		feature *db.Feature
		want    string
	}{
		{"passes", &db.Feature{Passes: true}, "[x]"},
		{"blocked", &db.Feature{BlockedBy: &blocked}, "[!]"},
		{"in progress", &db.Feature{InProgress: true}, "[~]"},
		{"deferred", &db.Feature{Deferred: true}, "[-]"},
		{"pending", &db.Feature{}, "[ ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusMarker(tt.feature); got != tt.want {
				t.Errorf("statusMarker() = %q, want %q", got, tt.want)
			}
		})
	}
}

// =============================================================================
// End to end against a temp database
// =============================================================================

func TestSeedCommand(t *testing.T) {
	dbPath := seedTestDB(t)

	database := openTestDB(t, dbPath)
	count, err := database.CountFeatures()
	if err != nil {
		t.Fatalf("CountFeatures() returned error: %v", err)
	}
	if count != 8 {
		t.Errorf("seeded database has %d features, want 8", count)
	}

	// Implicit priorities follow file order
	features, err := database.AllFeatures()
	if err != nil {
		t.Fatalf("AllFeatures() returned error: %v", err)
	}
	if features[0].Name != "Mixer bus routing" || features[0].Priority != 1 {
		t.Errorf("first feature = %s (priority %d), want Mixer bus routing (priority 1)",
			features[0].Name, features[0].Priority)
	}
}

func TestConsolidateCommand_DryRunLeavesDatabaseAlone(t *testing.T) {
	dbPath := seedTestDB(t)

	_, err := executeCommand(newRootCmd(), "consolidate", "--db", dbPath, "--dry-run",
		"--target-min", "1", "--target-max", "100")
	if err != nil {
		t.Fatalf("dry run returned error: %v", err)
	}

	database := openTestDB(t, dbPath)
	count, err := database.CountFeatures()
	if err != nil {
		t.Fatalf("CountFeatures() returned error: %v", err)
	}
	if count != 8 {
		t.Errorf("database has %d features after dry run, want 8", count)
	}

	runs, err := database.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() returned error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("dry run recorded %d runs, want 0", len(runs))
	}
}

func TestConsolidateCommand_Execute(t *testing.T) {
	dbPath := seedTestDB(t)

	_, err := executeCommand(newRootCmd(), "consolidate", "--db", dbPath, "--execute",
		"--target-min", "1", "--target-max", "100")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}

	database := openTestDB(t, dbPath)

	// Two categories of 4 merge 3+1 into 2 bundles each.
	count, err := database.CountFeatures()
	if err != nil {
		t.Fatalf("CountFeatures() returned error: %v", err)
	}
	if count != 4 {
		t.Errorf("database has %d features after execute, want 4", count)
	}

	runs, err := database.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Status != db.RunOK {
		t.Errorf("run status = %s, want %s", runs[0].Status, db.RunOK)
	}
	if runs[0].Before != 8 || runs[0].After != 4 {
		t.Errorf("run counts = %d -> %d, want 8 -> 4", runs[0].Before, runs[0].After)
	}

	backups, err := database.BackupTables()
	if err != nil {
		t.Fatalf("BackupTables() returned error: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup table, got %d", len(backups))
	}
	backupCount, err := database.BackupCount(backups[0])
	if err != nil {
		t.Fatalf("BackupCount() returned error: %v", err)
	}
	if backupCount != 8 {
		t.Errorf("backup holds %d records, want 8", backupCount)
	}
}

func TestConsolidateCommand_MissedTargetFails(t *testing.T) {
	dbPath := seedTestDB(t)

	// 8 records cannot reach a 250..600 band; the dry run must surface the
	// validation error.
	_, err := executeCommand(newRootCmd(), "consolidate", "--db", dbPath, "--dry-run",
		"--target-min", "250", "--target-max", "600")
	if err == nil {
		t.Fatal("expected validation error for missed target range")
	}

	var invErr *consolidate.InvariantError
	if !errors.As(err, &invErr) {
		t.Errorf("expected InvariantError, got %T: %v", err, err)
	}
}

func TestExportCommand_RoundTrip(t *testing.T) {
	dbPath := seedTestDB(t)
	outPath := filepath.Join(t.TempDir(), "export.yaml")

	if _, err := executeCommand(newRootCmd(), "export", "--db", dbPath, "-o", outPath); err != nil {
		t.Fatalf("export returned error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}

	f, err := seed.Parse(data)
	if err != nil {
		t.Fatalf("exported file does not parse as seed YAML: %v", err)
	}
	if len(f.Entries) != 8 {
		t.Errorf("export contains %d features, want 8", len(f.Entries))
	}
}

func TestListCommand(t *testing.T) {
	dbPath := seedTestDB(t)

	if _, err := executeCommand(newRootCmd(), "list", "--db", dbPath); err != nil {
		t.Errorf("list returned error: %v", err)
	}

	if _, err := executeCommand(newRootCmd(), "list", "--db", dbPath, "Scoring"); err != nil {
		t.Errorf("list with category argument returned error: %v", err)
	}
}

func TestRunsCommand_EmptyHistory(t *testing.T) {
	dbPath := seedTestDB(t)

	if _, err := executeCommand(newRootCmd(), "runs", "--db", dbPath); err != nil {
		t.Errorf("runs returned error: %v", err)
	}
}
