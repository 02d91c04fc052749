package config

import (
	"github.com/mrz1836/conductor/internal/errors"
)

// Validate checks a Config for values that would break the service at
// runtime. Returns a wrapped ErrConfigInvalid describing the first problem
// found, or ErrConfigNil for a nil config.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.Server.ListenAddr == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "server.listen_addr cannot be empty")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "server.shutdown_timeout must be positive")
	}

	if cfg.Agent.Binary == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "agent.binary cannot be empty")
	}
	if cfg.Agent.Timeout <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "agent.timeout must be positive")
	}

	if cfg.Tail.PollInterval <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "tail.poll_interval must be positive")
	}
	if cfg.Tail.SinkWaitTimeout <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "tail.sink_wait_timeout must be positive")
	}

	return nil
}
