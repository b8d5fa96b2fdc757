package matching

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// xPathPredicate finds an element in an XML body and matches its text, or one
// of its attributes when the path ends in "/@name", against an anchored regex.
// An empty regex only requires the element to exist.
type xPathPredicate struct {
	raw  string
	expr string
	path etree.Path
	attr string
	p    *pattern
}

func compileXPath(raw, expr string) (Predicate, error) {
	elemPath, attr := raw, ""
	if i := strings.LastIndex(raw, "/@"); i >= 0 {
		elemPath, attr = raw[:i], raw[i+2:]
	}
	path, err := etree.CompilePath(elemPath)
	if err != nil {
		return nil, fmt.Errorf("invalid element path: %w", err)
	}
	pred := &xPathPredicate{raw: raw, expr: expr, path: path, attr: attr}
	if expr != "" {
		pred.p, err = compilePattern(expr, "xPath."+raw, true)
		if err != nil {
			return nil, err
		}
	}
	return pred, nil
}

func (x *xPathPredicate) Match(req *Request, caps Captures) bool {
	doc, ok := req.XML()
	if !ok {
		return false
	}
	for _, el := range doc.FindElementsPath(x.path) {
		value := strings.TrimSpace(el.Text())
		if x.attr != "" {
			a := el.SelectAttr(x.attr)
			if a == nil {
				continue
			}
			value = a.Value
		}
		if x.p == nil || x.p.match(value, caps) {
			return true
		}
	}
	return false
}

func (x *xPathPredicate) String() string { return "xPath " + x.raw + " ~ " + x.expr }
