package config

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvConfig     = "STUBDB_CONFIG"
	EnvHost       = "STUBDB_HOST"
	EnvPort       = "STUBDB_PORT"
	EnvSecurePort = "STUBDB_SECURE_PORT"
	EnvDBSets     = "STUBDB_DBSETS"
	EnvLogLevel   = "STUBDB_LOG_LEVEL"
	EnvLogFormat  = "STUBDB_LOG_FORMAT"
)

// ApplyEnv overrides cfg with the STUBDB_* variables that are set.
// Unparseable port numbers are ignored.
func ApplyEnv(cfg *Config) {
	applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := getenv(EnvSecurePort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.SecurePort = port
		}
	}
	if v := getenv(EnvDBSets); v != "" {
		cfg.DBSets = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
}
