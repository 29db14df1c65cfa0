// The casebrain CLI: operational commands for running analyses, inspecting
// the practice dashboard and managing database migrations without going
// through the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jurisio/casebrain/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "casebrain: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "casebrain",
		Short:         "Case intelligence engine for legal practices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml",
		"path to configuration file")

	loadConfig := func() (*config.Config, error) {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return config.LoadFromEnv()
		}
		return config.Load(configPath)
	}

	root.AddCommand(
		newAnalyzeCmd(loadConfig),
		newSummaryCmd(loadConfig),
		newMigrateCmd(loadConfig),
	)
	return root
}
