package matching

// bodyPredicate searches the raw body with an unanchored regex.
type bodyPredicate struct {
	expr string
	p    *pattern
}

func compileBody(expr string) (Predicate, error) {
	p, err := compilePattern(expr, "body", false)
	if err != nil {
		return nil, err
	}
	return &bodyPredicate{expr: expr, p: p}, nil
}

func (b *bodyPredicate) Match(req *Request, caps Captures) bool {
	return b.p.match(string(req.Body), caps)
}

func (b *bodyPredicate) String() string { return "body ~ " + b.expr }
