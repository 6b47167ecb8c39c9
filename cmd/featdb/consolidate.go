package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/x402arcade/featdb/internal/config"
	"github.com/x402arcade/featdb/internal/consolidate"
)

func consolidateCmd() *cobra.Command {
	var dryRun bool
	var targetMin, targetMax int

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Merge fragmented features into grouped milestones",
		Long: `Consolidate merges each category's fragmented feature records into grouped
milestone features, shrinking the table to a reviewable size while keeping
every step of every child feature.

The mode must be explicit: --dry-run prints the full report without touching
the database; --execute swaps in the consolidated table after backing up the
original.

Examples:
  featdb consolidate --dry-run
  featdb consolidate --execute
  featdb consolidate --execute --target-min 200 --target-max 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsolidate(cmd, dryRun, targetMin, targetMax)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the consolidation without writing")
	cmd.Flags().Bool("execute", false, "Apply the consolidation to the database")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "execute")
	cmd.MarkFlagsOneRequired("dry-run", "execute")

	cmd.Flags().IntVar(&targetMin, "target-min", 0, "Override the configured lower bound for the final record count")
	cmd.Flags().IntVar(&targetMax, "target-max", 0, "Override the configured upper bound for the final record count")

	return cmd
}

func runConsolidate(cmd *cobra.Command, dryRun bool, targetMin, targetMax int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if targetMin > 0 {
		cfg.Consolidation.TargetMin = targetMin
	}
	if targetMax > 0 {
		cfg.Consolidation.TargetMax = targetMax
	}

	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	consolidator, err := consolidate.New(database, consolidationOptions(cfg))
	if err != nil {
		return err
	}

	plan, err := consolidator.Plan()
	if err != nil {
		return err
	}

	// The breakdown prints even when validation fails below, so a missed
	// target range can be diagnosed from the same output.
	renderReport(os.Stdout, plan.Stats)

	if dryRun {
		warnings, err := consolidator.Validate(plan)
		renderVerdict(os.Stdout, warnings, err)
		if err != nil {
			return err
		}
		fmt.Println("\nDry run: no changes were written.")
		return nil
	}

	result, err := consolidator.Execute(plan)
	if err != nil {
		renderVerdict(os.Stdout, nil, err)
		return err
	}

	renderVerdict(os.Stdout, result.Warnings, nil)
	fmt.Printf("\nConsolidated %d records into %d.\n", plan.Stats.Before, plan.Stats.After)
	fmt.Printf("  run:    %s\n", result.RunID)
	fmt.Printf("  backup: %s\n", result.BackupTable)
	return nil
}

// consolidationOptions maps the config consolidation section onto the
// consolidator's options.
func consolidationOptions(cfg *config.Config) consolidate.Options {
	opts := consolidate.Options{
		TargetMin:      cfg.Consolidation.TargetMin,
		TargetMax:      cfg.Consolidation.TargetMax,
		NoMergeMax:     cfg.Consolidation.NoMergeMax,
		SmallFactor:    cfg.Consolidation.SmallFactor,
		LargeFactor:    cfg.Consolidation.LargeFactor,
		LargeThreshold: cfg.Consolidation.LargeThreshold,
	}

	if len(cfg.Consolidation.Partitions) > 0 {
		opts.Partitions = make(map[string][]consolidate.PartitionGroup, len(cfg.Consolidation.Partitions))
		for category, ranges := range cfg.Consolidation.Partitions {
			groups := make([]consolidate.PartitionGroup, 0, len(ranges))
			for _, r := range ranges {
				groups = append(groups, consolidate.PartitionGroup{Start: r.Start, End: r.End, Name: r.Name})
			}
			opts.Partitions[category] = groups
		}
	}

	return opts
}
