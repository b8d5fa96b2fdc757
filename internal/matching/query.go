package matching

// queryPredicate requires a query parameter whose value matches an anchored regex.
// With repeated parameters the first matching value wins.
type queryPredicate struct {
	name string
	expr string
	p    *pattern
}

func compileQuery(name, expr string) (Predicate, error) {
	p, err := compilePattern(expr, "query."+name, true)
	if err != nil {
		return nil, err
	}
	return &queryPredicate{name: name, expr: expr, p: p}, nil
}

func (q *queryPredicate) Match(req *Request, caps Captures) bool {
	values, ok := req.Query[q.name]
	if !ok {
		return false
	}
	for _, v := range values {
		if q.p.match(v, caps) {
			return true
		}
	}
	return false
}

func (q *queryPredicate) String() string { return "query " + q.name + " ~ " + q.expr }
