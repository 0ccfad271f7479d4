package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string

	rootCmd = &cobra.Command{
		Use:   "finlens",
		Short: "Cloud Account Audit Scanner",
		Long: `FinLens - Cloud Account Audit Scanner

FinLens scans cloud accounts for waste, security exposure, and
governance gaps. Each scan discovers resources across regions,
evaluates them against a rule catalog, and produces dollar-estimated
recommendations, risk scores, and compliance reports.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`FinLens {{.Version}} - Cloud Account Audit Scanner
`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
}
