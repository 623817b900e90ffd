package cmd

import (
	"fmt"
	"os"

	"github.com/dt-pm-tools/ground-control/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	appConfig config.Config
	version   = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:     "ground-control",
	Short:   "Export Jira ticket hierarchies to a local directory tree",
	Long:    `Exports a Jira project's initiatives, epics, and stories into nested local directories, one directory per ticket, preserving the parent/child hierarchy. One-way: Jira is never modified.`,
	Version: version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ground-control.yaml)")
}

// loadConfig loads and validates configuration. Commands that need Jira
// access call this before any network call.
func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w\nRun 'ground-control config' to set up credentials", err)
	}
	appConfig = cfg
	return nil
}
