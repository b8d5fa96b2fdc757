package matching

import (
	"regexp"
	"strconv"
)

// pattern is a compiled regex that records its groups as captures.
type pattern struct {
	re     *regexp.Regexp
	source string
}

func compilePattern(expr, source string, anchored bool) (*pattern, error) {
	if anchored {
		expr = "^(?:" + expr + ")$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &pattern{re: re, source: source}, nil
}

// match reports whether s matches and records groups in caps.
func (p *pattern) match(s string, caps Captures) bool {
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	for i, name := range p.re.SubexpNames() {
		if i == 0 {
			continue
		}
		if name == "" {
			name = p.source + "." + strconv.Itoa(i)
		}
		caps[name] = m[i]
	}
	return true
}
