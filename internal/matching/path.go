package matching

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// compileURL picks the path matching strategy from the shape of u:
// a leading "^" is a regex, ":name" or "{name}" segments are parameters,
// glob metacharacters use doublestar, anything else must be equal.
func compileURL(u string) (Predicate, error) {
	switch {
	case strings.HasPrefix(u, "^"):
		p, err := compilePattern(u, "url", false)
		if err != nil {
			return nil, err
		}
		return &regexPath{p: p, expr: u}, nil
	case hasParams(u):
		return newParamPath(u), nil
	case strings.ContainsAny(u, "*?[{"):
		if !doublestar.ValidatePattern(u) {
			return nil, fmt.Errorf("invalid glob pattern %q", u)
		}
		return &globPath{pattern: u, segments: !strings.Contains(u, "**")}, nil
	default:
		return exactPath(u), nil
	}
}

type exactPath string

func (p exactPath) Match(req *Request, _ Captures) bool { return req.Path == string(p) }
func (p exactPath) String() string                      { return "url " + string(p) }

type regexPath struct {
	p    *pattern
	expr string
}

func (p *regexPath) Match(req *Request, caps Captures) bool { return p.p.match(req.Path, caps) }
func (p *regexPath) String() string                         { return "url ~ " + p.expr }

// paramPath matches "/users/:id" or "/users/{id}" segment by segment.
type paramPath struct {
	raw      string
	segments []string
}

func newParamPath(u string) *paramPath {
	return &paramPath{raw: u, segments: splitPath(u)}
}

func (p *paramPath) Match(req *Request, caps Captures) bool {
	parts := splitPath(req.Path)
	if len(parts) != len(p.segments) {
		return false
	}
	found := make(Captures, 2)
	for i, seg := range p.segments {
		if name, ok := paramName(seg); ok {
			if parts[i] == "" {
				return false
			}
			found[name] = parts[i]
			continue
		}
		if seg != parts[i] {
			return false
		}
	}
	for k, v := range found {
		caps[k] = v
	}
	return true
}

func (p *paramPath) String() string { return "url " + p.raw }

// globPath matches a doublestar pattern. Without "**" each "*" segment is
// captured as url.<n>.
type globPath struct {
	pattern  string
	segments bool
}

func (p *globPath) Match(req *Request, caps Captures) bool {
	ok, err := doublestar.Match(p.pattern, req.Path)
	if err != nil || !ok {
		return false
	}
	if !p.segments {
		return true
	}
	patParts := splitPath(p.pattern)
	pathParts := splitPath(req.Path)
	n := 0
	for i, seg := range patParts {
		if seg == "*" && i < len(pathParts) {
			n++
			caps["url."+strconv.Itoa(n)] = pathParts[i]
		}
	}
	return true
}

func (p *globPath) String() string { return "url glob " + p.pattern }

func hasParams(u string) bool {
	for _, seg := range splitPath(u) {
		if _, ok := paramName(seg); ok {
			return true
		}
	}
	return false
}

func paramName(seg string) (string, bool) {
	if len(seg) > 1 && seg[0] == ':' {
		return seg[1:], true
	}
	if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' && !strings.Contains(seg, ",") {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
