package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Atiwari330/hub-agent-sub001/pkg/config"
)

var (
	// Global flags
	rulesFile string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hubagent",
	Short: "Hub Agent - deal compliance and risk classification",
	Long: `Hub Agent Unified CLI

Mirrors HubSpot deals into a local store, classifies every open deal
(risk, hygiene, staleness, next step, week-1 cadence) and serves the
resulting work queues to the sales dashboard.

Usage:
  go run ./cmd/hubagent [command]

Examples:
  go run ./cmd/hubagent migrate
  go run ./cmd/hubagent sync --workers 8
  go run ./cmd/hubagent api
  go run ./cmd/hubagent classify --input deals.json --format table`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rules YAML file (overrides RULES_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rulesFile != "" {
		cfg.Business.RulesFile = rulesFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
