package main

import (
	"github.com/spf13/cobra"

	"github.com/x402arcade/featdb/internal/config"
	"github.com/x402arcade/featdb/internal/consolidate"
	"github.com/x402arcade/featdb/internal/tui"
)

func browseCmd() *cobra.Command {
	var plan bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse features in an interactive terminal UI",
		Long: `Browse opens a read-only terminal browser over the feature table: categories
on the left, the selected category's features with their steps on the right.

With --plan it browses the consolidation preview instead of the live table,
showing what 'featdb consolidate --execute' would produce.

Examples:
  featdb browse
  featdb browse --plan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, plan)
		},
	}

	cmd.Flags().BoolVar(&plan, "plan", false, "Browse the consolidation preview instead of the live table")

	return cmd
}

func runBrowse(cmd *cobra.Command, preview bool) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	if !preview {
		features, err := database.AllFeatures()
		if err != nil {
			return err
		}
		return tui.Run("live table", features)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	consolidator, err := consolidate.New(database, consolidationOptions(cfg))
	if err != nil {
		return err
	}

	plan, err := consolidator.Plan()
	if err != nil {
		return err
	}

	return tui.Run("consolidation preview", plan.Consolidated)
}
