// Package mapping defines the request→response rules served by stubdb.
package mapping

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultStatus is used when a response does not set one.
const DefaultStatus = http.StatusOK

// Dataset fallbacks for unresolved dataset placeholders.
const (
	FallbackEmpty = "empty" // replace with ""
	FallbackKeep  = "keep"  // leave the placeholder text unchanged
)

// Mapping is one configured rule. Mappings are immutable once loaded and their
// order in a Set is the matching precedence.
type Mapping struct {
	ID       string       `json:"id,omitempty" yaml:"id,omitempty"`
	Request  RequestSpec  `json:"request" yaml:"request"`
	Response ResponseSpec `json:"response" yaml:"response"`
	DBSet    *DBSetRef    `json:"dbset,omitempty" yaml:"dbset,omitempty"`

	// Source is the file the mapping was read from.
	Source string `json:"source,omitempty" yaml:"-"`
}

// RequestSpec lists the conditions a request must meet. Empty fields match anything.
type RequestSpec struct {
	Method   string            `json:"method,omitempty" yaml:"method,omitempty"`
	URL      string            `json:"url,omitempty" yaml:"url,omitempty"`
	Query    map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body     string            `json:"body,omitempty" yaml:"body,omitempty"`
	JSONPath map[string]string `json:"jsonPath,omitempty" yaml:"jsonPath,omitempty"`
	XPath    map[string]string `json:"xPath,omitempty" yaml:"xPath,omitempty"`
	When     string            `json:"when,omitempty" yaml:"when,omitempty"`
}

// ResponseSpec describes what to send back.
type ResponseSpec struct {
	Status  int     `json:"status,omitempty" yaml:"status,omitempty"`
	Headers Headers `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string  `json:"body,omitempty" yaml:"body,omitempty"`
	File    string  `json:"file,omitempty" yaml:"file,omitempty"`

	// Latency delays the response, in milliseconds.
	Latency int `json:"latency,omitempty" yaml:"latency,omitempty"`
}

// StatusCode returns Status or DefaultStatus when unset.
func (r ResponseSpec) StatusCode() int {
	if r.Status == 0 {
		return DefaultStatus
	}
	return r.Status
}

// DBSetRef points a mapping at a dataset row.
type DBSetRef struct {
	// DB is the dataset name.
	DB string `json:"db" yaml:"db"`
	// Key selects the row. It may contain <<capture>> references.
	Key string `json:"key" yaml:"key"`
	// Fallback overrides the server-wide dataset fallback ("empty" or "keep").
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Set is an ordered list of mappings.
type Set []*Mapping

// Validate checks the fields that can be checked without compiling patterns.
func (m *Mapping) Validate() error {
	var problems []string

	if m.Request.Method != "" && strings.ContainsAny(m.Request.Method, " \t/") {
		problems = append(problems, fmt.Sprintf("request.method %q is not a valid method", m.Request.Method))
	}
	if s := m.Response.Status; s != 0 && (s < 100 || s > 599) {
		problems = append(problems, fmt.Sprintf("response.status %d out of range", s))
	}
	if m.Response.Latency < 0 {
		problems = append(problems, "response.latency must not be negative")
	}
	if m.Response.Body != "" && m.Response.File != "" {
		problems = append(problems, "response.body and response.file are mutually exclusive")
	}
	if m.DBSet != nil {
		if m.DBSet.DB == "" {
			problems = append(problems, "dbset.db is required")
		}
		switch m.DBSet.Fallback {
		case "", FallbackEmpty, FallbackKeep:
		default:
			problems = append(problems, fmt.Sprintf("dbset.fallback %q must be %q or %q", m.DBSet.Fallback, FallbackEmpty, FallbackKeep))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
