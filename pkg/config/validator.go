package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/stubdb/pkg/mapping"
)

// ValidationError is one problem found in a configuration.
type ValidationError struct {
	Path    string // e.g. "server.tls.cert"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationResult collects every problem instead of stopping at the first.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error joins all messages, one per line.
func (r *ValidationResult) Error() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// AddError records a problem at path.
func (r *ValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: message})
}

// Err returns r as an error, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return r
}

// Validate checks the fields that do not need the file system.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}
	s := cfg.Server

	validatePort(result, "server.port", s.Port)
	validatePort(result, "server.securePort", s.SecurePort)
	if s.Port == 0 && s.SecurePort == 0 {
		result.AddError("server", "at least one of port and securePort is required")
	}
	if s.Port != 0 && s.Port == s.SecurePort {
		result.AddError("server.securePort", fmt.Sprintf("conflicts with server.port %d", s.Port))
	}
	if s.ReadTimeout < 0 {
		result.AddError("server.readTimeout", "must not be negative")
	}
	if s.WriteTimeout < 0 {
		result.AddError("server.writeTimeout", "must not be negative")
	}

	if s.SecurePort != 0 && !s.TLS.AutoCert && (s.TLS.Cert == "" || s.TLS.Key == "") {
		result.AddError("server.tls", "cert and key are required for securePort unless autoCert is set")
	}
	if (s.TLS.Cert == "") != (s.TLS.Key == "") {
		result.AddError("server.tls", "cert and key must be set together")
	}
	if s.TLS.MutualSSL && len(s.TLS.CA) == 0 {
		result.AddError("server.tls.ca", "required when mutualSSL is set")
	}

	for i, p := range cfg.Mappings {
		if !doublestar.ValidatePathPattern(p) {
			result.AddError(fmt.Sprintf("mappings[%d]", i), fmt.Sprintf("invalid pattern %q", p))
		}
	}
	if cfg.DBSetPattern != "" && !doublestar.ValidatePattern(cfg.DBSetPattern) {
		result.AddError("dbsetPattern", fmt.Sprintf("invalid pattern %q", cfg.DBSetPattern))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result.AddError("log.level", fmt.Sprintf("unknown level %q", cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		result.AddError("log.format", fmt.Sprintf("unknown format %q", cfg.Log.Format))
	}

	switch cfg.Templating.DatasetFallback {
	case "", mapping.FallbackEmpty, mapping.FallbackKeep:
	default:
		result.AddError("templating.datasetFallback", fmt.Sprintf("must be %q or %q", mapping.FallbackEmpty, mapping.FallbackKeep))
	}

	return result
}

func validatePort(result *ValidationResult, path string, port int) {
	if port < 0 || port > 65535 {
		result.AddError(path, fmt.Sprintf("%d is not a valid port", port))
	}
}
