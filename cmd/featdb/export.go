package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/x402arcade/featdb/internal/seed"
)

// filePermissions is the default permission for exported files.
const filePermissions = 0644

func exportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the feature table as seed YAML",
		Long: `Export writes every feature as a YAML document that 'featdb seed' accepts,
preserving priorities and statuses.

Examples:
  featdb export                    # Write YAML to stdout
  featdb export -o features.yaml   # Write to file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, outputFile string) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	features, err := database.AllFeatures()
	if err != nil {
		return err
	}

	data, err := seed.Render(features)
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Print(string(data))
		return nil
	}

	return os.WriteFile(outputFile, data, filePermissions)
}
