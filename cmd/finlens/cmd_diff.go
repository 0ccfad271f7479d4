package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finlens/finlens/diffengine"
	"github.com/finlens/finlens/storage"
)

var diffJSON bool

var diffCmd = &cobra.Command{
	Use:   "diff <scan-a> <scan-b>",
	Short: "Compare two scans",
	Long: `Compare two completed scans: resources added and removed, state
changes, new and fixed violations, and the change in monthly waste.`,
	Example: `  finlens diff 3f2a... 9c1b...        # Human-readable summary
  finlens diff 3f2a... 9c1b... --json # Full diff as JSON`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Print the full diff as JSON")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	inputA, err := store.LoadDiffInput(args[0])
	if err != nil {
		return fmt.Errorf("load scan %s: %w", args[0], err)
	}
	inputB, err := store.LoadDiffInput(args[1])
	if err != nil {
		return fmt.Errorf("load scan %s: %w", args[1], err)
	}

	result := diffengine.Compare(inputA, inputB)

	if diffJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Diff %s → %s\n\n", result.ScanA.ID, result.ScanB.ID)
	fmt.Printf("  Resources added:    %d\n", result.Summary.ResourcesAdded)
	fmt.Printf("  Resources removed:  %d\n", result.Summary.ResourcesRemoved)
	fmt.Printf("  State changes:      %d\n", result.Summary.StateChanges)
	fmt.Printf("  New violations:     %d\n", result.Summary.NewViolations)
	fmt.Printf("  Fixed violations:   %d\n", result.Summary.FixedViolations)
	fmt.Printf("  Waste delta:        $%.2f/month\n", result.Summary.WasteDelta)

	if len(result.TypeChanges) > 0 {
		fmt.Printf("\n  By type:\n")
		for _, tc := range result.TypeChanges {
			fmt.Printf("    %-12s +%d / -%d\n", tc.Type, tc.Added, tc.Removed)
		}
	}
	return nil
}
