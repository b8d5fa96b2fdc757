package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubdb/pkg/logging"
	"github.com/getmockd/stubdb/pkg/mapping"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, mapping.FallbackEmpty, cfg.Templating.DatasetFallback)
	assert.Equal(t, ".", cfg.BaseDir())
	assert.True(t, Validate(cfg).IsValid())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "conf", "stubdb.yaml"), `
server:
  port: 9000
  securePort: 9443
  readTimeout: 5s
  tls:
    autoCert: true
mappings:
  - mappings/*.yaml
dbsets: data
log:
  level: debug
  format: json
templating:
  datasetFallback: keep
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 9443, cfg.Server.SecurePort)
	assert.Equal(t, DefaultHost, cfg.Server.Host, "unset fields keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.TLS.AutoCert)
	assert.Equal(t, mapping.FallbackKeep, cfg.Templating.DatasetFallback)
	assert.Equal(t, path, cfg.File())
	assert.Equal(t, filepath.Join(dir, "conf", "data"), cfg.Resolve(cfg.DBSets))
	assert.Equal(t, "/abs/data", cfg.Resolve("/abs/data"))

	lc := cfg.Logging()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, logging.FormatJSON, lc.Format)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "stubdb.json"), `{"server":{"port":8081},"dbsets":"d"}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "d", cfg.DBSets)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = Load(writeFile(t, filepath.Join(dir, "empty.yaml"), ""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Load(writeFile(t, filepath.Join(dir, "bad.yaml"), "server: [1, 2"))
	assert.ErrorIs(t, err, ErrInvalidYAML)

	_, err = Load(dir)
	assert.ErrorContains(t, err, "directory")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvHost:       "127.0.0.1",
		EnvPort:       "8000",
		EnvSecurePort: "not-a-port",
		EnvDBSets:     "/data",
		EnvLogLevel:   "warn",
		EnvLogFormat:  "json",
	}
	cfg := Default()
	applyEnv(cfg, func(k string) string { return env[k] })

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Server.SecurePort)
	assert.Equal(t, "/data", cfg.DBSets)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyEnv_FromProcess(t *testing.T) {
	t.Setenv(EnvPort, "8123")
	cfg := Default()
	ApplyEnv(cfg)
	assert.Equal(t, 8123, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		paths  []string
	}{
		{"defaults", func(*Config) {}, nil},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, []string{"server.port"}},
		{"no listener", func(c *Config) { c.Server.Port = 0 }, []string{"server"}},
		{"same ports", func(c *Config) {
			c.Server.SecurePort = c.Server.Port
			c.Server.TLS.AutoCert = true
		}, []string{"server.securePort"}},
		{"https without cert", func(c *Config) { c.Server.SecurePort = 8443 }, []string{"server.tls"}},
		{"cert without key", func(c *Config) { c.Server.TLS.Cert = "a.crt" }, []string{"server.tls"}},
		{"mutual without ca", func(c *Config) {
			c.Server.SecurePort = 8443
			c.Server.TLS.AutoCert = true
			c.Server.TLS.MutualSSL = true
		}, []string{"server.tls.ca"}},
		{"bad glob", func(c *Config) { c.Mappings = []string{"a/[b"} }, []string{"mappings[0]"}},
		{"bad log", func(c *Config) {
			c.Log.Level = "loud"
			c.Log.Format = "xml"
		}, []string{"log.level", "log.format"}},
		{"bad fallback", func(c *Config) { c.Templating.DatasetFallback = "drop" }, []string{"templating.datasetFallback"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			result := Validate(cfg)

			var paths []string
			for _, e := range result.Errors {
				paths = append(paths, e.Path)
			}
			assert.Equal(t, tt.paths, paths)
			if tt.paths == nil {
				assert.NoError(t, result.Err())
			} else {
				assert.Error(t, result.Err())
			}
		})
	}
}
