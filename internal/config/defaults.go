package config

import (
	"github.com/spf13/viper"

	"github.com/mrz1836/conductor/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by the
// config file and environment variables.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      constants.DefaultListenAddr,
			ShutdownTimeout: constants.ServerShutdownTimeout,
			AllowedOrigins:  []string{"*"},
		},
		Agent: AgentConfig{
			Binary:  constants.AgentBinary,
			Timeout: constants.DefaultAgentTimeout,
		},
		Paths: PathsConfig{
			// Empty means resolve to ~/.conductor at load time.
			DataDir: "",
		},
		Tail: TailConfig{
			PollInterval:    constants.TailPollInterval,
			SinkWaitTimeout: constants.SinkWaitTimeout,
		},
	}
}

// setDefaults registers default values on a viper instance so they survive
// partial config files and are visible to AutomaticEnv.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("server.listen_addr", def.Server.ListenAddr)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("server.allowed_origins", def.Server.AllowedOrigins)

	v.SetDefault("agent.binary", def.Agent.Binary)
	v.SetDefault("agent.timeout", def.Agent.Timeout)

	v.SetDefault("paths.data_dir", def.Paths.DataDir)

	v.SetDefault("tail.poll_interval", def.Tail.PollInterval)
	v.SetDefault("tail.sink_wait_timeout", def.Tail.SinkWaitTimeout)
}
