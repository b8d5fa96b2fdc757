package template

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/stubdb/pkg/dbset"
)

// dumpRegex matches [[dump:target]] and [[dump:target:format]].
var dumpRegex = regexp.MustCompile(`\[\[dump:(\w+)(?::(json|yaml))?\]\]`)

// DumpStage replaces [[dump:...]] directives with a serialized view of the
// request, the matched mapping, the captures or the mapped dataset row.
type DumpStage struct {
	Store *dbset.Store
}

// Name implements Stage.
func (s *DumpStage) Name() string { return "dumps" }

// Apply implements Stage.
func (s *DumpStage) Apply(body string, in *Input) string {
	if !strings.Contains(body, "[[dump:") {
		return body
	}
	return dumpRegex.ReplaceAllStringFunc(body, func(directive string) string {
		m := dumpRegex.FindStringSubmatch(directive)
		v, ok := s.target(m[1], in)
		if !ok {
			return ""
		}
		return encode(v, m[2])
	})
}

func (s *DumpStage) target(name string, in *Input) (any, bool) {
	if in == nil {
		return nil, false
	}
	switch name {
	case "request":
		if in.Request == nil {
			return nil, false
		}
		return in.Request.Snapshot(), true
	case "mapping":
		if in.Mapping == nil {
			return nil, false
		}
		return in.Mapping, true
	case "captures":
		caps := map[string]string(in.Captures)
		if caps == nil {
			caps = map[string]string{}
		}
		return caps, true
	case "row":
		ref := mappingDBSet(in)
		if ref == nil {
			return nil, false
		}
		t, ok := s.Store.Table(ref.DB)
		if !ok {
			return nil, false
		}
		return t.Row(RowKey(ref, in))
	}
	return nil, false
}

func encode(v any, format string) string {
	if format == "yaml" {
		out, err := yaml.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(out), "\n")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
