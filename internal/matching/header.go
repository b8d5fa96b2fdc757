package matching

import "net/http"

// headerPredicate requires a header whose value matches an anchored regex.
// Header names are case-insensitive.
type headerPredicate struct {
	name string
	expr string
	p    *pattern
}

func compileHeader(name, expr string) (Predicate, error) {
	canonical := http.CanonicalHeaderKey(name)
	p, err := compilePattern(expr, "header."+canonical, true)
	if err != nil {
		return nil, err
	}
	return &headerPredicate{name: canonical, expr: expr, p: p}, nil
}

func (h *headerPredicate) Match(req *Request, caps Captures) bool {
	for _, v := range req.Header.Values(h.name) {
		if h.p.match(v, caps) {
			return true
		}
	}
	return false
}

func (h *headerPredicate) String() string { return "header " + h.name + " ~ " + h.expr }
