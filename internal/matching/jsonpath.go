package matching

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// jsonPathPredicate evaluates a JSONPath against the parsed body and matches
// the first result, rendered as text, against an anchored regex. An empty
// regex only requires the path to exist.
type jsonPathPredicate struct {
	path string
	expr string
	x    jp.Expr
	p    *pattern
}

func compileJSONPath(path, expr string) (Predicate, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath: %w", err)
	}
	pred := &jsonPathPredicate{path: path, expr: expr, x: x}
	if expr != "" {
		pred.p, err = compilePattern(expr, "jsonPath."+path, true)
		if err != nil {
			return nil, err
		}
	}
	return pred, nil
}

func (j *jsonPathPredicate) Match(req *Request, caps Captures) bool {
	data, ok := req.JSON()
	if !ok {
		return false
	}
	results := j.x.Get(data)
	if len(results) == 0 {
		return false
	}
	if j.p == nil {
		return true
	}
	for _, r := range results {
		if j.p.match(jsonText(r), caps) {
			return true
		}
	}
	return false
}

func (j *jsonPathPredicate) String() string { return "jsonPath " + j.path + " ~ " + j.expr }

// jsonText renders scalars bare and containers as compact sorted JSON.
func jsonText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case bool, int64, float64, int:
		return fmt.Sprint(t)
	default:
		return oj.JSON(t, &oj.Options{Sort: true})
	}
}
