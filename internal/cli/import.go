package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/config"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/ingest"
	"github.com/mrz1836/conductor/internal/task"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <tasks.csv>",
		Short: "Import tasks from a tracker CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, dataDir, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logger := newLogger(dataDir, flags.verbose, flags.quiet)

			f, err := os.Open(args[0])
			if err != nil {
				return conductorerrors.Wrapf(err, "failed to open %s", args[0])
			}
			defer func() { _ = f.Close() }()

			store := task.NewFileStore(config.TasksFilePath(dataDir))
			settings := config.NewSettingsStore(config.SettingsFilePath(dataDir))
			importer := ingest.NewImporter(store, settings, clock.RealClock{}, logger)

			result, err := importer.Import(cmd.Context(), f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %d task(s), skipped %d existing, %d filtered by assignee\n",
				result.Created, result.SkippedExisting, result.SkippedAssignee)

			return nil
		},
	}
}
