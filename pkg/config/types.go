package config

import (
	"path/filepath"
	"time"

	"github.com/getmockd/stubdb/pkg/logging"
	"github.com/getmockd/stubdb/pkg/mapping"
)

// Defaults.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 7777
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	DefaultDBSetPattern = "*"
)

// Config is the complete server configuration.
type Config struct {
	Server       ServerConfig     `json:"server" yaml:"server"`
	Mappings     []string         `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	DBSets       string           `json:"dbsets,omitempty" yaml:"dbsets,omitempty"`
	DBSetPattern string           `json:"dbsetPattern,omitempty" yaml:"dbsetPattern,omitempty"`
	Log          LogConfig        `json:"log" yaml:"log"`
	Templating   TemplatingConfig `json:"templating" yaml:"templating"`

	// file is the path the configuration was read from, if any.
	file string
}

// ServerConfig configures the listeners.
type ServerConfig struct {
	Host       string    `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int       `json:"port,omitempty" yaml:"port,omitempty"`
	SecurePort int       `json:"securePort,omitempty" yaml:"securePort,omitempty"`
	TLS        TLSConfig `json:"tls" yaml:"tls"`

	ReadTimeout  time.Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout time.Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
}

// TLSConfig configures the HTTPS listener.
type TLSConfig struct {
	Cert      string   `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key       string   `json:"key,omitempty" yaml:"key,omitempty"`
	CA        []string `json:"ca,omitempty" yaml:"ca,omitempty"`
	MutualSSL bool     `json:"mutualSSL,omitempty" yaml:"mutualSSL,omitempty"`
	AutoCert  bool     `json:"autoCert,omitempty" yaml:"autoCert,omitempty"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TemplatingConfig tunes the response pipeline.
type TemplatingConfig struct {
	// DatasetFallback is "empty" or "keep".
	DatasetFallback string `json:"datasetFallback,omitempty" yaml:"datasetFallback,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		DBSetPattern: DefaultDBSetPattern,
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		Templating: TemplatingConfig{DatasetFallback: mapping.FallbackEmpty},
	}
}

// File returns the path the configuration was loaded from, or "".
func (c *Config) File() string { return c.file }

// BaseDir is the directory relative paths are resolved against.
func (c *Config) BaseDir() string {
	if c.file == "" {
		return "."
	}
	return filepath.Dir(c.file)
}

// Resolve makes a relative path relative to BaseDir.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir(), path)
}

// Logging converts the log section for pkg/logging.
func (c *Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Log.Level)
	lc.Format = logging.ParseFormat(c.Log.Format)
	return lc
}
