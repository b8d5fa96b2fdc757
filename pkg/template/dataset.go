package template

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/getmockd/stubdb/pkg/dbset"
	"github.com/getmockd/stubdb/pkg/mapping"
)

var datasetRegex = regexp.MustCompile(`##([^#\s]+)##`)

// DatasetStage replaces ##field## and ##db:key:field## with dataset values.
type DatasetStage struct {
	Store    *dbset.Store
	Fallback string

	log *slog.Logger
}

// Name implements Stage.
func (s *DatasetStage) Name() string { return "dataset" }

// Apply implements Stage.
func (s *DatasetStage) Apply(body string, in *Input) string {
	if !strings.Contains(body, "##") {
		return body
	}
	fallback := s.Fallback
	ref := mappingDBSet(in)
	if ref != nil && ref.Fallback != "" {
		fallback = ref.Fallback
	}

	return datasetRegex.ReplaceAllStringFunc(body, func(placeholder string) string {
		inner := placeholder[2 : len(placeholder)-2]
		if v, ok := s.resolve(inner, ref, in); ok {
			return v
		}
		if s.log != nil {
			s.log.Debug("unresolved dataset placeholder", "placeholder", placeholder)
		}
		if fallback == mapping.FallbackKeep {
			return placeholder
		}
		return ""
	})
}

func (s *DatasetStage) resolve(inner string, ref *mapping.DBSetRef, in *Input) (string, bool) {
	if parts := strings.SplitN(inner, ":", 3); len(parts) == 3 {
		return s.Store.Lookup(parts[0], parts[1], parts[2])
	}
	if strings.Contains(inner, ":") || ref == nil {
		return "", false
	}
	return s.Store.Lookup(ref.DB, RowKey(ref, in), inner)
}

// RowKey expands capture references in the dbset key. Only the key is
// expanded here; the body's <<name>> placeholders wait for the match stage.
func RowKey(ref *mapping.DBSetRef, in *Input) string {
	if ref == nil {
		return ""
	}
	var caps map[string]string
	if in != nil {
		caps = in.Captures
	}
	return expandCaptures(ref.Key, caps)
}

func mappingDBSet(in *Input) *mapping.DBSetRef {
	if in == nil || in.Mapping == nil {
		return nil
	}
	return in.Mapping.DBSet
}
