package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conductor/internal/agent"
	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/git"
	"github.com/mrz1836/conductor/internal/ingest"
	"github.com/mrz1836/conductor/internal/server"
	"github.com/mrz1836/conductor/internal/task"
	"github.com/mrz1836/conductor/internal/workspace"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the conductor HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, dataDir, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logger := newLogger(dataDir, flags.verbose, flags.quiet)
			sinkPath := func(taskID string) string {
				return config.SinkPath(dataDir, taskID)
			}

			store := task.NewFileStore(config.TasksFilePath(dataDir))
			settings := config.NewSettingsStore(config.SettingsFilePath(dataDir))

			supervisor := agent.NewSupervisor(
				cfg.Agent.Binary,
				sinkPath,
				logger,
				agent.WithSyncTimeout(cfg.Agent.Timeout),
			)

			tailer := agent.NewTailer(
				sinkPath,
				store,
				logger,
				agent.WithPollInterval(cfg.Tail.PollInterval),
				agent.WithSinkWait(cfg.Tail.SinkWaitTimeout),
			)

			engine := task.NewEngine(task.EngineDeps{
				Store:      store,
				Runs:       supervisor,
				Git:        git.NewCLIRunner(),
				Workspaces: workspace.NewManager(config.WorkspacesDir(dataDir)),
				Settings:   settings,
				SinkPath:   sinkPath,
				Clock:      clock.RealClock{},
				Logger:     logger,
			})

			importer := ingest.NewImporter(store, settings, clock.RealClock{}, logger)

			srv := server.New(server.Deps{
				Config:   cfg,
				Tasks:    store,
				Engine:   engine,
				Importer: importer,
				Streamer: tailer,
				Settings: settings,
				Logger:   logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}
}
