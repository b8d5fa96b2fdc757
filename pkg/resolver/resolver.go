// Package resolver selects the mapping that answers an inbound request.
//
// Mappings are tried in declaration order and the first one whose conditions
// all hold wins. There is no scoring: a specific mapping must be declared
// before a general one that would also match.
package resolver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getmockd/stubdb/internal/matching"
	"github.com/getmockd/stubdb/pkg/mapping"
)

// DebugParam is the query parameter that asks for the debug envelope. It is
// removed from the request before matching.
const DebugParam = "debug"

// Request describes an inbound call.
type Request = matching.Request

// Captures holds values extracted by the matched mapping.
type Captures = matching.Captures

// NewRequest describes r with its fully read body.
func NewRequest(r *http.Request, body []byte) *Request {
	return matching.NewRequest(r, body, DebugParam)
}

// Match is the outcome of a successful resolution.
type Match struct {
	Mapping  *mapping.Mapping
	Captures Captures
	// Index is the mapping's position in the configured order.
	Index int
}

type entry struct {
	mapping *mapping.Mapping
	matcher *matching.Matcher
}

// Resolver holds compiled mappings. It is read-only after New and safe for
// concurrent use.
type Resolver struct {
	entries []entry
}

// New compiles every mapping. All compile errors are reported together.
func New(set mapping.Set) (*Resolver, error) {
	r := &Resolver{entries: make([]entry, 0, len(set))}
	var errs []error
	for i, m := range set {
		if m == nil {
			continue
		}
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mapping %s: %w", label(m, i), err))
			continue
		}
		matcher, err := matching.Compile(m.Request)
		if err != nil {
			errs = append(errs, fmt.Errorf("mapping %s: %w", label(m, i), err))
			continue
		}
		r.entries = append(r.entries, entry{mapping: m, matcher: matcher})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Resolve returns the first mapping whose conditions hold for req.
// The boolean is false when nothing matches; that is a normal outcome.
func (r *Resolver) Resolve(req *Request) (*Match, bool) {
	for i, e := range r.entries {
		if caps, ok := e.matcher.Match(req); ok {
			return &Match{Mapping: e.mapping, Captures: caps, Index: i}, true
		}
	}
	return nil, false
}

// Len returns the number of mappings.
func (r *Resolver) Len() int { return len(r.entries) }

// Mappings returns the mappings in matching order.
func (r *Resolver) Mappings() mapping.Set {
	out := make(mapping.Set, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.mapping
	}
	return out
}

func label(m *mapping.Mapping, i int) string {
	if m.ID != "" {
		return m.ID
	}
	return fmt.Sprintf("#%d", i)
}

// Snapshot is a serializable view of a Request.
type Snapshot = matching.Snapshot
