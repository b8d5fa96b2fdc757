package template

import (
	"log/slog"
	"regexp"
	"strings"
)

var captureRegex = regexp.MustCompile(`<<\s*([^<>\s]+)\s*>>`)

// MatchStage replaces <<name>> with the matched capture, or "" if absent.
type MatchStage struct {
	log *slog.Logger
}

// Name implements Stage.
func (s *MatchStage) Name() string { return "match" }

// Apply implements Stage.
func (s *MatchStage) Apply(body string, in *Input) string {
	var caps map[string]string
	if in != nil {
		caps = in.Captures
	}
	if s.log != nil && strings.Contains(body, "<<") {
		for _, m := range captureRegex.FindAllStringSubmatch(body, -1) {
			if _, ok := caps[m[1]]; !ok {
				s.log.Debug("unresolved capture placeholder", "capture", m[1])
			}
		}
	}
	return expandCaptures(body, caps)
}

func expandCaptures(s string, caps map[string]string) string {
	if !strings.Contains(s, "<<") {
		return s
	}
	return captureRegex.ReplaceAllStringFunc(s, func(placeholder string) string {
		name := captureRegex.FindStringSubmatch(placeholder)[1]
		return caps[name]
	})
}
