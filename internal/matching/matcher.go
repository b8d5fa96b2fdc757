package matching

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/getmockd/stubdb/pkg/mapping"
)

// Captures maps capture names to the values extracted from a request.
type Captures map[string]string

// Predicate is one match condition.
type Predicate interface {
	// Match reports whether req satisfies the condition. Captured values are
	// written to caps; callers discard caps when any predicate fails.
	Match(req *Request, caps Captures) bool
	// String describes the condition for logs.
	String() string
}

// Matcher is the compiled condition list of one mapping.
type Matcher struct {
	predicates []Predicate
}

// NewMatcher builds a matcher from already compiled predicates.
func NewMatcher(predicates ...Predicate) *Matcher {
	return &Matcher{predicates: predicates}
}

// Match evaluates every predicate in order and stops at the first failure.
func (m *Matcher) Match(req *Request) (Captures, bool) {
	caps := Captures{}
	for _, p := range m.predicates {
		if !p.Match(req, caps) {
			return nil, false
		}
	}
	return caps, true
}

// Predicates returns the compiled predicates in evaluation order.
func (m *Matcher) Predicates() []Predicate {
	return slices.Clone(m.predicates)
}

// Compile turns a request spec into a Matcher. Map-valued conditions are
// evaluated in sorted key order so repeated captures resolve the same way on
// every request.
func Compile(spec mapping.RequestSpec) (*Matcher, error) {
	var preds []Predicate

	if spec.Method != "" {
		preds = append(preds, methodPredicate(strings.ToUpper(spec.Method)))
	}

	if spec.URL != "" {
		p, err := compileURL(spec.URL)
		if err != nil {
			return nil, fmt.Errorf("request.url: %w", err)
		}
		preds = append(preds, p)
	}

	for _, name := range sortedKeys(spec.Query) {
		p, err := compileQuery(name, spec.Query[name])
		if err != nil {
			return nil, fmt.Errorf("request.query.%s: %w", name, err)
		}
		preds = append(preds, p)
	}

	for _, name := range sortedKeys(spec.Headers) {
		p, err := compileHeader(name, spec.Headers[name])
		if err != nil {
			return nil, fmt.Errorf("request.headers.%s: %w", name, err)
		}
		preds = append(preds, p)
	}

	if spec.Body != "" {
		p, err := compileBody(spec.Body)
		if err != nil {
			return nil, fmt.Errorf("request.body: %w", err)
		}
		preds = append(preds, p)
	}

	for _, path := range sortedKeys(spec.JSONPath) {
		p, err := compileJSONPath(path, spec.JSONPath[path])
		if err != nil {
			return nil, fmt.Errorf("request.jsonPath[%s]: %w", path, err)
		}
		preds = append(preds, p)
	}

	for _, path := range sortedKeys(spec.XPath) {
		p, err := compileXPath(path, spec.XPath[path])
		if err != nil {
			return nil, fmt.Errorf("request.xPath[%s]: %w", path, err)
		}
		preds = append(preds, p)
	}

	if spec.When != "" {
		p, err := compileWhen(spec.When)
		if err != nil {
			return nil, fmt.Errorf("request.when: %w", err)
		}
		preds = append(preds, p)
	}

	return NewMatcher(preds...), nil
}

type methodPredicate string

func (p methodPredicate) Match(req *Request, _ Captures) bool {
	return strings.EqualFold(string(p), req.Method)
}

func (p methodPredicate) String() string { return "method " + string(p) }

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
