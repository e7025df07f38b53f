// Package config provides configuration management for signalmesh.
package config

import "time"

// Environment represents the deployment environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// IsValid checks if the environment is one of the known values.
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// LogLevel represents the logging level, mapped onto log/slog's levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// IsValid checks if the log level is one of the known values.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// SchemaKind selects which parallelism schema a Provider boots with.
type SchemaKind string

const (
	SchemaPerModel SchemaKind = "per_model"
	SchemaPool     SchemaKind = "pool"
)

// IsValid checks if the schema kind is one of the known values.
func (s SchemaKind) IsValid() bool {
	switch s {
	case SchemaPerModel, SchemaPool:
		return true
	default:
		return false
	}
}

// Config is the complete signalmesh configuration.
type Config struct {
	App     AppConfig     `yaml:"app" json:"app"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Engine  EngineConfig  `yaml:"engine" json:"engine"`
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`

	Custom map[string]interface{} `yaml:"custom,omitempty" json:"custom,omitempty"`
}

// AppConfig contains application-level configuration.
type AppConfig struct {
	Name        string      `yaml:"name" json:"name"`
	Version     string      `yaml:"version" json:"version"`
	Environment Environment `yaml:"environment" json:"environment"`
	Debug       bool        `yaml:"debug" json:"debug"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  LogLevel `yaml:"level" json:"level"`
	Format string   `yaml:"format" json:"format"` // "json" or "text"
	Output string   `yaml:"output" json:"output"` // "stdout", "stderr", or a file path
}

// EngineConfig controls the router, schema, and timeout choices a Provider
// boots with.
type EngineConfig struct {
	// Schema selects PerModelSchema or PoolSchema.
	Schema SchemaKind `yaml:"schema" json:"schema"`

	// PerModel holds PerModelSchema-specific tuning.
	PerModel PerModelConfig `yaml:"per_model" json:"per_model"`

	// Pool holds PoolSchema-specific tuning.
	Pool PoolConfig `yaml:"pool" json:"pool"`

	// DefaultSignals enables the "exit"/"suspend" built-in signals.
	DefaultSignals bool `yaml:"default_signals" json:"default_signals"`

	// DefaultCodecs enables the default encoder/decoder set.
	DefaultCodecs bool `yaml:"default_codecs" json:"default_codecs"`

	// AskTimeout is loaded and merged like the other fields, but nothing in
	// this module reads it; engine.Ask waits only as long as its context.
	AskTimeout time.Duration `yaml:"ask_timeout" json:"ask_timeout"`

	// ShutdownTimeout bounds how long Provider.Shutdown waits for every
	// model to drain before giving up.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// PerformanceInterval is the smoothing window a container's rolling
	// mean ApproximateLoopTime is computed against.
	PerformanceInterval time.Duration `yaml:"performance_interval" json:"performance_interval"`
}

// PerModelConfig tunes PerModelSchema.
type PerModelConfig struct {
	GateTimeout time.Duration `yaml:"gate_timeout" json:"gate_timeout"`

	// MinimumLoopTime floors how often a container re-ticks its model; zero
	// means no throttling beyond what work demands.
	MinimumLoopTime time.Duration `yaml:"minimum_loop_time" json:"minimum_loop_time"`
}

// PoolConfig tunes PoolSchema.
type PoolConfig struct {
	TargetPools        int           `yaml:"target_pools" json:"target_pools"`
	TargetDensity      int           `yaml:"target_density" json:"target_density"`
	SupervisorInterval time.Duration `yaml:"supervisor_interval" json:"supervisor_interval"`
}

// MonitorConfig contains monitoring configuration.
type MonitorConfig struct {
	Enabled bool              `yaml:"enabled" json:"enabled"`
	HTTP    HTTPMonitorConfig `yaml:"http" json:"http"`
}

// HTTPMonitorConfig contains the Prometheus scrape endpoint settings.
type HTTPMonitorConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	Address     string `yaml:"address" json:"address"`
	Port        int    `yaml:"port" json:"port"`
	MetricsPath string `yaml:"metrics_path" json:"metrics_path"`
}

// DefaultConfig returns the configuration a Provider boots with when no
// file or environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "signalmesh-app",
			Version:     "0.1.0",
			Environment: EnvDevelopment,
			Debug:       true,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: "text",
			Output: "stdout",
		},
		Engine: EngineConfig{
			Schema: SchemaPerModel,
			PerModel: PerModelConfig{
				GateTimeout:     30 * time.Second,
				MinimumLoopTime: 0,
			},
			Pool: PoolConfig{
				TargetPools:        4,
				TargetDensity:      8,
				SupervisorInterval: 500 * time.Millisecond,
			},
			DefaultSignals:      true,
			DefaultCodecs:       true,
			AskTimeout:          5 * time.Second,
			ShutdownTimeout:     10 * time.Second,
			PerformanceInterval: time.Second,
		},
		Monitor: MonitorConfig{
			Enabled: false,
			HTTP: HTTPMonitorConfig{
				Enabled:     false,
				Address:     "0.0.0.0",
				Port:        9090,
				MetricsPath: "/metrics",
			},
		},
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return ErrInvalidAppName
	}
	if !c.App.Environment.IsValid() {
		return ErrInvalidEnvironment
	}
	if !c.Log.Level.IsValid() {
		return ErrInvalidLogLevel
	}
	if !c.Engine.Schema.IsValid() {
		return ErrInvalidSchema
	}
	if c.Engine.Schema == SchemaPool {
		if c.Engine.Pool.TargetPools <= 0 {
			return ErrInvalidPoolTargets
		}
		if c.Engine.Pool.TargetDensity <= 0 {
			return ErrInvalidPoolTargets
		}
	}
	if c.Monitor.HTTP.Enabled && (c.Monitor.HTTP.Port <= 0 || c.Monitor.HTTP.Port > 65535) {
		return ErrInvalidPort
	}
	return nil
}
