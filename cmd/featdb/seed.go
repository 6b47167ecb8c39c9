package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/x402arcade/featdb/internal/seed"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Bulk-load feature definitions from a YAML file",
		Long: `Seed inserts every feature defined in a YAML file into the database.
Entries without an explicit priority are appended after the current maximum,
in file order.

Example:
  featdb seed features.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args[0])
		},
	}
}

func runSeed(cmd *cobra.Command, path string) error {
	file, err := seed.Load(path)
	if err != nil {
		return err
	}

	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	maxPriority, err := database.MaxPriority()
	if err != nil {
		return err
	}

	features := file.Features(maxPriority + 1)
	if err := database.InsertFeatures(features); err != nil {
		return err
	}

	total, err := database.CountFeatures()
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d features (%d total).\n", len(features), total)
	return nil
}
