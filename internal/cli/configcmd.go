package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conductor/internal/config"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the conductor configuration file",
	}

	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with the effective defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Load defaults plus environment only: the target file may
			// not exist yet.
			cfg, err := config.Load(cmd.Context(), "")
			if err != nil {
				return err
			}

			dataDir, err := cfg.ResolveDataDir()
			if err != nil {
				return err
			}

			path := flags.configFile
			if path == "" {
				path = config.ConfigFilePath(dataDir)
			}

			if !force && fileExists(path) {
				return conductorerrors.Wrapf(conductorerrors.ErrConfigInvalid,
					"%s already exists (use --force to overwrite)", path)
			}

			if err = config.WriteFile(path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	cmd.AddCommand(initCmd)

	return cmd
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
