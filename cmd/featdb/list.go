package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/x402arcade/featdb/internal/db"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [category]",
		Short: "List features grouped by category",
		Long: `List prints every feature with its status marker, grouped by category in
priority order. With a category argument, only that category is listed.

Status markers: [x] passes, [~] in progress, [!] blocked, [-] deferred,
[ ] pending.

Examples:
  featdb list
  featdb list "Audio System"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := ""
			if len(args) == 1 {
				category = args[0]
			}
			return runList(cmd, category)
		},
	}
}

func runList(cmd *cobra.Command, category string) error {
	database, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	var features []*db.Feature
	if category != "" {
		features, err = database.FeaturesByCategory(category)
	} else {
		features, err = database.AllFeatures()
	}
	if err != nil {
		return err
	}

	if len(features) == 0 {
		fmt.Println("No features found.")
		return nil
	}

	// Regroup the priority-ordered rows so each category prints as a block.
	grouped := make(map[string][]*db.Feature)
	for _, f := range features {
		grouped[f.Category] = append(grouped[f.Category], f)
	}
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s\n", name)
		for _, f := range grouped[name] {
			fmt.Printf("  %s %d. %s", statusMarker(f), f.Priority, f.Name)
			if len(f.Steps) > 0 {
				fmt.Printf(" (%d steps)", len(f.Steps))
			}
			fmt.Println()
		}
	}

	fmt.Printf("\n%d features, %d steps.\n", len(features), db.StepCount(features))
	return nil
}

func statusMarker(f *db.Feature) string {
	switch {
	case f.Passes:
		return "[x]"
	case f.BlockedBy != nil:
		return "[!]"
	case f.InProgress:
		return "[~]"
	case f.Deferred:
		return "[-]"
	default:
		return "[ ]"
	}
}
