package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent consolidation runs and backups",
		Long: `Runs lists the most recent consolidation runs with their outcome, record
counts, and backup table, followed by the backup tables still present in
the database.

Example:
  featdb runs --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	runs, err := database.RecentRuns(limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No consolidation runs recorded.")
	}

	for _, run := range runs {
		fmt.Printf("%s  %-7s  %d -> %d records, %d -> %d steps\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Status,
			run.Before, run.After, run.StepsBefore, run.StepsAfter)
		fmt.Printf("    id %s\n", run.ID)
		if run.BackupTable != "" {
			fmt.Printf("    backup %s\n", run.BackupTable)
		}
		if run.Detail != "" {
			fmt.Printf("    %s\n", run.Detail)
		}
	}

	backups, err := database.BackupTables()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return nil
	}

	fmt.Println("\nBackup tables:")
	for _, table := range backups {
		count, err := database.BackupCount(table)
		if err != nil {
			return err
		}
		fmt.Printf("  %s (%d records)\n", table, count)
	}

	return nil
}
