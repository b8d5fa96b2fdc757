package template

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// markerRegex matches {{expression}} with optional inner whitespace.
var markerRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

var (
	randomIntPattern    = regexp.MustCompile(`^random\.int\(\s*(-?\d+)\s*,\s*(-?\d+)\s*\)$`)
	randomFloatPattern  = regexp.MustCompile(`^random\.float\(\s*(-?[0-9.]+)\s*,\s*(-?[0-9.]+)\s*\)$`)
	randomStringPattern = regexp.MustCompile(`^random\.string\(\s*(\d+)\s*\)$`)
	sequencePattern     = regexp.MustCompile(`^sequence\(\s*"([^"]+)"\s*(?:,\s*(-?\d+)\s*)?\)$`)
	nowLayoutPattern    = regexp.MustCompile(`^now\(\s*"([^"]+)"\s*\)$`)
	datePattern         = regexp.MustCompile(`^date\(\s*([+-]?\d+)d\s*(?:,\s*"([^"]+)"\s*)?\)$`)
	fakerPattern        = regexp.MustCompile(`^faker\.(\w+)$`)
)

// MarkerStage expands built-in dynamic markers. Values are computed on every
// call; nothing is cached.
type MarkerStage struct {
	Sequences *SequenceStore

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Name implements Stage.
func (s *MarkerStage) Name() string { return "markers" }

// Apply implements Stage.
func (s *MarkerStage) Apply(body string, in *Input) string {
	if !strings.Contains(body, "{{") {
		return body
	}
	return markerRegex.ReplaceAllStringFunc(body, func(m string) string {
		expr := markerRegex.FindStringSubmatch(m)[1]
		return s.evaluate(strings.TrimSpace(expr), in)
	})
}

// evaluate returns the value of one marker, or "" when it is unknown.
func (s *MarkerStage) evaluate(expr string, in *Input) string {
	now := s.now()
	rng := inputRand(in)

	switch expr {
	case "now":
		return now.Format(time.RFC3339)
	case "timestamp", "timestamp.unix":
		return strconv.FormatInt(now.Unix(), 10)
	case "timestamp.unix_ms":
		return strconv.FormatInt(now.UnixMilli(), 10)
	case "timestamp.iso":
		return now.UTC().Format(time.RFC3339Nano)
	case "uuid":
		return rngUUID(rng)
	case "uuid.short":
		return rngUUID(rng)[:8]
	case "random":
		return randomHex(rng, 4)
	case "random.int":
		return randomInt(rng, 0, 100)
	case "random.float":
		return strconv.FormatFloat(rngFloat64(rng), 'f', 6, 64)
	case "random.string":
		return randomString(rng, 10)
	}

	if m := randomIntPattern.FindStringSubmatch(expr); m != nil {
		lo, err1 := strconv.Atoi(m[1])
		hi, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return ""
		}
		return randomInt(rng, lo, hi)
	}
	if m := randomFloatPattern.FindStringSubmatch(expr); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil || lo > hi {
			return ""
		}
		return strconv.FormatFloat(lo+rngFloat64(rng)*(hi-lo), 'f', 6, 64)
	}
	if m := randomStringPattern.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > maxRandomString {
			return ""
		}
		return randomString(rng, n)
	}
	if m := sequencePattern.FindStringSubmatch(expr); m != nil {
		return s.sequence(m[1], m[2])
	}
	if m := nowLayoutPattern.FindStringSubmatch(expr); m != nil {
		return now.Format(m[1])
	}
	if m := datePattern.FindStringSubmatch(expr); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return ""
		}
		layout := time.DateOnly
		if m[2] != "" {
			layout = m[2]
		}
		return now.AddDate(0, 0, days).Format(layout)
	}
	if m := fakerPattern.FindStringSubmatch(expr); m != nil {
		return fake(rng, m[1])
	}

	return ""
}

func (s *MarkerStage) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MarkerStage) sequence(name, start string) string {
	if s.Sequences == nil {
		return ""
	}
	first := int64(1)
	if start != "" {
		v, err := strconv.ParseInt(start, 10, 64)
		if err != nil {
			return ""
		}
		first = v
	}
	return strconv.FormatInt(s.Sequences.Next(name, first), 10)
}
