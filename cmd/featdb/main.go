// Package main is the entry point for the featdb maintenance CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/x402arcade/featdb/internal/config"
	"github.com/x402arcade/featdb/internal/db"
	"github.com/x402arcade/featdb/internal/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "featdb",
		Short: "featdb maintains the x402Arcade feature tracker",
		Long: `featdb maintains the x402Arcade feature tracker: a SQLite database of
planned gameplay, payment, and infrastructure features. It bulk-loads feature
definitions from YAML, consolidates fragmented categories into grouped
milestone features, and keeps an audit trail of every consolidation run.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			log.SetVerbose(verbose)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database (default: from config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(consolidateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(browseCmd())

	return rootCmd
}

// openDatabase opens the feature database, honoring the --db override and
// falling back to the configured path.
func openDatabase(cmd *cobra.Command) (*db.DB, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.GetDatabasePath()
	}
	return db.New(path)
}

// closeDatabase closes the database, logging a failure instead of masking
// the command's own error.
func closeDatabase(database *db.DB) {
	log.CloseError("database", database.Close())
}
