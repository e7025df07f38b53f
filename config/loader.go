// Package config provides configuration loading and parsing functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from a YAML file plus environment
// variable overrides.
type Loader struct {
	searchPaths   []string
	envPrefix     string
	defaultConfig *Config
}

// NewLoader creates a loader with the conventional search paths.
func NewLoader() *Loader {
	return &Loader{
		searchPaths: []string{
			".",
			"./config",
			"/etc/signalmesh",
			os.Getenv("HOME") + "/.signalmesh",
		},
		envPrefix:     "SIGNALMESH",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths overrides the directories AutoLoad searches.
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix overrides the environment variable prefix.
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// LoadFromFile loads, merges onto the default configuration, applies
// environment overrides, and validates.
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	merged := l.mergeConfig(l.defaultOrFallback(), config)
	if err := l.loadFromEnv(merged); err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidateError, err)
	}
	return merged, nil
}

// AutoLoad searches the configured paths for "signalmesh.yaml"/".yml" or
// "config.yaml"/".yml", falling back to defaults plus environment overrides
// if none is found.
func (l *Loader) AutoLoad() (*Config, error) {
	if path := l.findConfigFile(); path != "" {
		return l.LoadFromFile(path)
	}

	config := l.defaultOrFallback()
	if err := l.loadFromEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidateError, err)
	}
	return config, nil
}

func (l *Loader) defaultOrFallback() *Config {
	if l.defaultConfig != nil {
		cp := *l.defaultConfig
		return &cp
	}
	return DefaultConfig()
}

func (l *Loader) findConfigFile() string {
	for _, dir := range l.searchPaths {
		for _, name := range []string{"signalmesh.yaml", "signalmesh.yml", "config.yaml", "config.yml"} {
			full := filepath.Join(dir, name)
			if _, err := os.Stat(full); err == nil {
				return full
			}
		}
	}
	return ""
}

func (l *Loader) loadFromEnv(c *Config) error {
	if v := os.Getenv(l.envPrefix + "_APP_NAME"); v != "" {
		c.App.Name = v
	}
	if v := os.Getenv(l.envPrefix + "_APP_ENVIRONMENT"); v != "" {
		c.App.Environment = Environment(v)
	}
	if v := os.Getenv(l.envPrefix + "_APP_DEBUG"); v != "" {
		c.App.Debug = strings.EqualFold(v, "true")
	}
	if v := os.Getenv(l.envPrefix + "_LOG_LEVEL"); v != "" {
		c.Log.Level = LogLevel(v)
	}
	if v := os.Getenv(l.envPrefix + "_ENGINE_SCHEMA"); v != "" {
		c.Engine.Schema = SchemaKind(v)
	}
	if v := os.Getenv(l.envPrefix + "_MONITOR_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfigParseError, err)
		}
		c.Monitor.HTTP.Port = port
	}
	return nil
}

// mergeConfig overlays userConfig's non-zero fields onto defaultConfig.
func (l *Loader) mergeConfig(defaultConfig, userConfig *Config) *Config {
	merged := *defaultConfig

	if userConfig.App.Name != "" {
		merged.App.Name = userConfig.App.Name
	}
	if userConfig.App.Version != "" {
		merged.App.Version = userConfig.App.Version
	}
	if userConfig.App.Environment != "" {
		merged.App.Environment = userConfig.App.Environment
	}
	merged.App.Debug = userConfig.App.Debug

	if userConfig.Log.Level != "" {
		merged.Log.Level = userConfig.Log.Level
	}
	if userConfig.Log.Format != "" {
		merged.Log.Format = userConfig.Log.Format
	}
	if userConfig.Log.Output != "" {
		merged.Log.Output = userConfig.Log.Output
	}

	if userConfig.Engine.Schema != "" {
		merged.Engine.Schema = userConfig.Engine.Schema
	}
	if userConfig.Engine.PerModel.GateTimeout != 0 {
		merged.Engine.PerModel.GateTimeout = userConfig.Engine.PerModel.GateTimeout
	}
	if userConfig.Engine.PerModel.MinimumLoopTime != 0 {
		merged.Engine.PerModel.MinimumLoopTime = userConfig.Engine.PerModel.MinimumLoopTime
	}
	if userConfig.Engine.PerformanceInterval != 0 {
		merged.Engine.PerformanceInterval = userConfig.Engine.PerformanceInterval
	}
	if userConfig.Engine.Pool.TargetPools != 0 {
		merged.Engine.Pool.TargetPools = userConfig.Engine.Pool.TargetPools
	}
	if userConfig.Engine.Pool.TargetDensity != 0 {
		merged.Engine.Pool.TargetDensity = userConfig.Engine.Pool.TargetDensity
	}
	if userConfig.Engine.Pool.SupervisorInterval != 0 {
		merged.Engine.Pool.SupervisorInterval = userConfig.Engine.Pool.SupervisorInterval
	}
	if userConfig.Engine.AskTimeout != 0 {
		merged.Engine.AskTimeout = userConfig.Engine.AskTimeout
	}
	if userConfig.Engine.ShutdownTimeout != 0 {
		merged.Engine.ShutdownTimeout = userConfig.Engine.ShutdownTimeout
	}
	merged.Engine.DefaultSignals = userConfig.Engine.DefaultSignals
	merged.Engine.DefaultCodecs = userConfig.Engine.DefaultCodecs

	merged.Monitor = userConfig.Monitor

	if userConfig.Custom != nil {
		if merged.Custom == nil {
			merged.Custom = make(map[string]interface{})
		}
		for k, v := range userConfig.Custom {
			merged.Custom[k] = v
		}
	}

	return &merged
}
