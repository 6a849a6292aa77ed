// Package config reads command line defaults from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvLogLevel   = "XLTABLE_LOG_LEVEL"
	EnvLogFormat  = "XLTABLE_LOG_FORMAT"
	EnvDateLayout = "XLTABLE_DATE_LAYOUT"
	EnvAppendOnly = "XLTABLE_APPEND_ONLY"
)

// Config holds defaults that flags may override.
type Config struct {
	LogLevel   string
	LogFormat  string
	DateLayout string
	AppendOnly bool
	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
}

// Load reads the given .env files (".env" when none are named) without
// overriding variables already set, then builds a Config from the
// environment. Missing files are not an error.
func Load(files ...string) (Config, error) {
	loaded := true
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		loaded = false
	}

	cfg := Config{
		LogLevel:      GetEnvWithDefault(EnvLogLevel, "warn"),
		LogFormat:     GetEnvWithDefault(EnvLogFormat, "console"),
		DateLayout:    os.Getenv(EnvDateLayout),
		EnvFileLoaded: loaded,
	}
	if v := os.Getenv(EnvAppendOnly); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, &InvalidValueError{Key: EnvAppendOnly, Value: v}
		}
		cfg.AppendOnly = b
	}
	return cfg, nil
}

// InvalidValueError reports an environment variable that cannot be parsed.
type InvalidValueError struct {
	Key   string
	Value string
}

func (e *InvalidValueError) Error() string {
	return "invalid value " + strconv.Quote(e.Value) + " for " + e.Key
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
