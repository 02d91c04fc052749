// Package config provides configuration management for conductor with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence
// first):
//  1. Environment variables (CONDUCTOR_* prefix)
//  2. Config file (<data-dir>/config.yaml, or the path given via --config)
//  3. Built-in defaults
//
// Mutable project settings (repository URL, assignee list, skip-permissions
// flag) live in a separate settings record edited at runtime through the API;
// see settings.go.
//
// IMPORTANT: This package may import internal/constants, internal/errors, and
// internal/flock, but MUST NOT import internal/domain or other internal
// packages.
package config

import "time"

// Config is the root configuration structure for conductor.
type Config struct {
	// Server contains settings for the HTTP API.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Agent contains settings for external agent process invocation.
	Agent AgentConfig `yaml:"agent" mapstructure:"agent"`

	// Paths contains filesystem locations for records, workspaces, and
	// output sinks.
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`

	// Tail contains settings for the live output tail.
	Tail TailConfig `yaml:"tail" mapstructure:"tail"`
}

// ServerConfig contains settings for the HTTP API server.
type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to.
	// Default: ":9000"
	ListenAddr string `yaml:"listen_addr" mapstructure:"listen_addr"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// AllowedOrigins lists CORS origins permitted to call the API.
	// Default: ["*"] (single-operator tool, not exposed publicly)
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// AgentConfig contains settings for agent process invocation.
type AgentConfig struct {
	// Binary is the agent CLI executable name or path.
	// Default: "claude"
	Binary string `yaml:"binary" mapstructure:"binary"`

	// Timeout bounds synchronous (non-streaming) agent runs. Streaming
	// runs are unbounded; operators kill them out-of-band if needed.
	// Default: 30m
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PathsConfig contains filesystem locations.
type PathsConfig struct {
	// DataDir is the root directory for all conductor state: the task
	// record file, per-task workspaces, output sinks, and logs.
	// Default: ~/.conductor
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// TailConfig contains settings for the live output tail.
type TailConfig struct {
	// PollInterval is the delay between sink scans when no new data was
	// found. Default: 100ms
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// SinkWaitTimeout bounds the wait for the sink file to appear after a
	// subscriber attaches. Default: 30s
	SinkWaitTimeout time.Duration `yaml:"sink_wait_timeout" mapstructure:"sink_wait_timeout"`
}
