package matching

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// whenEnv is the data visible to a "when" expression. Header names are lowercase.
type whenEnv struct {
	Method   string            `expr:"method"`
	Path     string            `expr:"path"`
	URL      string            `expr:"url"`
	Query    map[string]string `expr:"query"`
	Headers  map[string]string `expr:"headers"`
	Body     string            `expr:"body"`
	Captures map[string]string `expr:"captures"`
}

// whenPredicate runs a boolean expr-lang program. Evaluation errors count as
// no match.
type whenPredicate struct {
	src     string
	program *vm.Program
}

func compileWhen(src string) (Predicate, error) {
	program, err := expr.Compile(src, expr.Env(whenEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return &whenPredicate{src: src, program: program}, nil
}

func (w *whenPredicate) Match(req *Request, caps Captures) bool {
	env := whenEnv{
		Method:   req.Method,
		Path:     req.Path,
		URL:      req.URL(),
		Query:    req.flatQuery(),
		Headers:  req.flatHeaders(),
		Body:     string(req.Body),
		Captures: caps,
	}
	out, err := expr.Run(w.program, env)
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

func (w *whenPredicate) String() string { return "when " + w.src }
