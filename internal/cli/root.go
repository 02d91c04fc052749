// Package cli wires the conductor commands: a long-running HTTP service and
// a one-shot CSV importer sharing the same on-disk task store.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conductor/internal/config"
)

// rootFlags holds the persistent flag values shared by all commands.
type rootFlags struct {
	configFile string
	verbose    bool
	quiet      bool
}

// Execute runs the conductor CLI and returns the process exit code.
func Execute() int {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "conductor",
		Short:         "Supervise agent-driven coding tasks from import to push",
		Long: "Conductor tracks coding tasks imported from a tracker CSV, runs an\n" +
			"external coding agent against a private clone per task, streams the\n" +
			"agent's output live, and pushes the resulting changes as a branch.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to config file (default: <data-dir>/config.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "log warnings and errors only")

	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newImportCmd(flags))
	root.AddCommand(newConfigCmd(flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return 1
	}

	return 0
}

// loadConfig resolves the effective configuration and data directory for a
// command invocation.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, string, error) {
	cfg, err := config.Load(cmd.Context(), flags.configFile)
	if err != nil {
		return nil, "", err
	}

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, "", err
	}

	return cfg, dataDir, nil
}
