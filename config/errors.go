// Package config provides error definitions for configuration management.
package config

import "errors"

// Configuration validation errors.
var (
	ErrInvalidAppName     = errors.New("invalid application name")
	ErrInvalidEnvironment = errors.New("invalid environment")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidSchema      = errors.New("invalid engine schema")
	ErrInvalidPoolTargets = errors.New("invalid pool target_pools/target_density")
	ErrInvalidPort        = errors.New("invalid port number")
)

// Configuration loading errors.
var (
	ErrConfigFileNotFound  = errors.New("configuration file not found")
	ErrConfigParseError    = errors.New("configuration parse error")
	ErrConfigValidateError = errors.New("configuration validation error")
	ErrConfigWatchError    = errors.New("configuration watch error")
)
