package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finlens/finlens/types"
)

var (
	scanRegions []string
	scanTypes   []string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print a summary",
	Long: `Run a single audit scan across the configured regions and
resource types, persist every artifact, and print a summary.`,
	Example: `  finlens scan                                  # Scan with config defaults
  finlens scan --region us-east-1 --region eu-west-1
  finlens scan --type EC2 --type S3             # Only some resource types`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringArrayVar(&scanRegions, "region", nil, "Region to scan (repeatable)")
	scanCmd.Flags().StringArrayVar(&scanTypes, "type", nil, "Resource type to scan (repeatable)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(scanRegions) > 0 {
		cfg.Regions = scanRegions
	}
	if len(scanTypes) > 0 {
		cfg.ResourceTypes = scanTypes
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	session := types.NewScanSession(cfg.Regions, cfg.ResourceTypes, "cli")
	if err := rt.store.PutSession(session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	result, err := rt.orch.Run(ctx, session)
	if err != nil {
		return fmt.Errorf("scan %s failed: %w", session.ID, err)
	}

	fmt.Printf("Scan %s completed in %s\n\n", session.ID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  Resources:        %d\n", session.ResourceCount)
	fmt.Printf("  Violations:       %d\n", session.ViolationCount)
	fmt.Printf("  Recommendations:  %d\n", len(result.Recommendations))
	fmt.Printf("  Monthly waste:    $%.2f\n", session.TotalMonthlyWaste)
	fmt.Printf("  Risk:             %d (%s)\n", session.OverallRiskScore, session.RiskLevel)
	fmt.Printf("  Compliance:       %.1f%%\n", session.ComplianceScore)

	if len(result.TaskFailures) > 0 {
		fmt.Printf("\n  %d discovery task(s) failed:\n", len(result.TaskFailures))
		for _, f := range result.TaskFailures {
			fmt.Printf("    %s/%s: %s\n", f.Region, f.Type, f.Error)
		}
	}
	return nil
}
