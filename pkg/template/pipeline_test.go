package template

import (
	mathrand "math/rand/v2"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/stubdb/pkg/dbset"
	"github.com/getmockd/stubdb/pkg/mapping"
	"github.com/getmockd/stubdb/pkg/resolver"
)

func testStore(t *testing.T) *dbset.Store {
	t.Helper()
	users, err := dbset.ParseTable("users.txt", strings.NewReader("id|name|city\n7|Ada|London\n8|Alan|Wilmslow\n"))
	require.NoError(t, err)
	return dbset.NewStore(users)
}

func input(t *testing.T, m *mapping.Mapping, caps map[string]string) *Input {
	t.Helper()
	r := httptest.NewRequest("POST", "/users/7?debug&x=1", strings.NewReader(`{"a":1}`))
	r.Header.Set("X-Trace", "abc")
	return &Input{
		Mapping:  m,
		Captures: caps,
		Request:  resolver.NewRequest(r, []byte(`{"a":1}`)),
	}
}

func userMapping(fallback string) *mapping.Mapping {
	return &mapping.Mapping{
		ID:    "user",
		DBSet: &mapping.DBSetRef{DB: "users", Key: "<<id>>", Fallback: fallback},
	}
}

func TestPipeline_StageOrder(t *testing.T) {
	p := New(testStore(t))
	assert.Equal(t, []string{"dataset", "match", "markers", "dumps"}, p.Stages())
}

func TestPipeline_DatasetFromCapturedKey(t *testing.T) {
	p := New(testStore(t))
	in := input(t, userMapping(""), map[string]string{"id": "7"})

	out := p.Render(`{"id":"<<id>>","name":"##name##","city":"##city##"}`, in)
	assert.Equal(t, `{"id":"7","name":"Ada","city":"London"}`, out)
}

func TestPipeline_ExplicitDatasetReference(t *testing.T) {
	p := New(testStore(t))
	out := p.Render("##users:8:name## ##users.txt:7:city##", input(t, nil, nil))
	assert.Equal(t, "Alan London", out)
}

func TestPipeline_MatchStage(t *testing.T) {
	p := New(nil)
	out := p.Render("item=<<id>> missing=<<nope>>", input(t, nil, map[string]string{"id": "7"}))
	assert.Equal(t, "item=7 missing=", out)
}

func TestPipeline_DatasetFallback(t *testing.T) {
	store := testStore(t)

	t.Run("empty by default", func(t *testing.T) {
		out := New(store).Render("[##nope##]", input(t, userMapping(""), map[string]string{"id": "7"}))
		assert.Equal(t, "[]", out)
	})

	t.Run("keep from pipeline option", func(t *testing.T) {
		p := New(store, WithDatasetFallback(mapping.FallbackKeep))
		out := p.Render("[##nope##] [##users:99:name##]", input(t, userMapping(""), map[string]string{"id": "7"}))
		assert.Equal(t, "[##nope##] [##users:99:name##]", out)
	})

	t.Run("mapping overrides pipeline", func(t *testing.T) {
		out := New(store).Render("[##nope##]", input(t, userMapping(mapping.FallbackKeep), map[string]string{"id": "7"}))
		assert.Equal(t, "[##nope##]", out)
	})

	t.Run("missing row", func(t *testing.T) {
		out := New(store).Render("[##name##]", input(t, userMapping(""), map[string]string{"id": "99"}))
		assert.Equal(t, "[]", out)
	})
}

func TestPipeline_NoCrossStageReinterpretation(t *testing.T) {
	// A capture value that looks like a dataset placeholder stays literal
	// because the dataset stage already ran.
	p := New(testStore(t))
	out := p.Render("<<id>>", input(t, nil, map[string]string{"id": "##users:7:name##"}))
	assert.Equal(t, "##users:7:name##", out)
}

func TestPipeline_MarkersAreFresh(t *testing.T) {
	p := New(nil)
	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

	a := p.Render("{{uuid}}", input(t, nil, nil))
	b := p.Render("{{uuid}}", input(t, nil, nil))
	assert.Regexp(t, uuidRe, a)
	assert.Regexp(t, uuidRe, b)
	assert.NotEqual(t, a, b)
}

func TestMarkerStage(t *testing.T) {
	fixed := time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)
	s := &MarkerStage{Sequences: NewSequenceStore(), Now: func() time.Time { return fixed }}
	in := &Input{Rand: mathrand.New(mathrand.NewPCG(1, 2))}

	tests := []struct {
		body string
		want string
	}{
		{"{{now}}", "2024-03-10T12:30:00Z"},
		{`{{now("2006-01-02")}}`, "2024-03-10"},
		{"{{ timestamp }}", "1710073800"},
		{"{{timestamp.unix_ms}}", "1710073800000"},
		{"{{date(+2d)}}", "2024-03-12"},
		{`{{date(-10d, "02/01/2006")}}`, "29/02/2024"},
		{"{{random.int(5, 5)}}", "5"},
		{"{{unknown.marker}}", ""},
		{"no markers", "no markers"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Apply(tt.body, in))
		})
	}
}

func TestMarkerStage_Random(t *testing.T) {
	s := &MarkerStage{}
	in := &Input{Rand: mathrand.New(mathrand.NewPCG(3, 4))}

	for range 50 {
		assert.Regexp(t, `^[1-6]$`, s.Apply("{{random.int(1, 6)}}", in))
		assert.Regexp(t, `^[A-Za-z0-9]{12}$`, s.Apply("{{random.string(12)}}", in))
		assert.Regexp(t, `^[0-9a-f]{8}$`, s.Apply("{{random}}", in))
		assert.Regexp(t, `^[0-9a-f]{8}$`, s.Apply("{{uuid.short}}", in))
		assert.Regexp(t, `^2\.\d{6}$`, s.Apply("{{random.float(2, 2.5)}}", in))
		assert.Regexp(t, `^[a-z]+\.[a-z]+@example\.(com|org|net)$`, s.Apply("{{faker.email}}", in))
	}
	assert.Empty(t, s.Apply("{{random.int(6, 1)}}", in))
	assert.Empty(t, s.Apply("{{faker.unknown}}", in))
}

func TestMarkerStage_OutOfRangeArgumentsDegradeAlone(t *testing.T) {
	p := New(nil)
	in := input(t, nil, nil)

	tests := []string{
		"{{random.string(99999999999999999999)}}",
		"{{random.string(5000)}}",
		"{{random.int(1, 99999999999999999999)}}",
		"{{random.int(-9223372036854775808, 9223372036854775807)}}",
		"{{random.int(0, 9223372036854775807)}}",
		"{{date(+99999999999999999999d)}}",
		`{{sequence("big", 99999999999999999999)}}`,
	}
	for _, marker := range tests {
		t.Run(marker, func(t *testing.T) {
			out := p.Render("{{uuid}} ["+marker+"]", in)
			assert.Regexp(t, `^[0-9a-f-]{36} \[\]$`, out)
		})
	}
}

func TestMarkerStage_SeededIsReproducible(t *testing.T) {
	s := &MarkerStage{}
	a := s.Apply("{{uuid}} {{random.int(1, 1000)}}", &Input{Rand: mathrand.New(mathrand.NewPCG(9, 9))})
	b := s.Apply("{{uuid}} {{random.int(1, 1000)}}", &Input{Rand: mathrand.New(mathrand.NewPCG(9, 9))})
	assert.Equal(t, a, b)
}

func TestMarkerStage_Sequence(t *testing.T) {
	p := New(nil)
	in := input(t, nil, nil)

	assert.Equal(t, "1 2", p.Render(`{{sequence("orders")}} {{sequence("orders")}}`, in))
	assert.Equal(t, "3", p.Render(`{{sequence("orders")}}`, in))
	assert.Equal(t, "100", p.Render(`{{sequence("invoices", 100)}}`, in))
}

func TestSequenceStore_Reset(t *testing.T) {
	s := NewSequenceStore()
	assert.Equal(t, int64(5), s.Next("a", 5))
	assert.Equal(t, int64(6), s.Next("a", 5))
	s.Reset("a")
	assert.Equal(t, int64(5), s.Next("a", 5))
}

func TestDumpStage(t *testing.T) {
	p := New(testStore(t))
	in := input(t, userMapping(""), map[string]string{"id": "7"})

	t.Run("captures", func(t *testing.T) {
		assert.Equal(t, `{"id":"7"}`, p.Render("[[dump:captures]]", in))
	})

	t.Run("row", func(t *testing.T) {
		assert.Equal(t, `{"city":"London","id":"7","name":"Ada"}`, p.Render("[[dump:row]]", in))
	})

	t.Run("row yaml", func(t *testing.T) {
		assert.Equal(t, "city: London\nid: \"7\"\nname: Ada", p.Render("[[dump:row:yaml]]", in))
	})

	t.Run("request", func(t *testing.T) {
		out := p.Render("[[dump:request]]", in)
		assert.JSONEq(t, `{
			"method": "POST",
			"url": "/users/7?x=1",
			"path": "/users/7",
			"query": {"x": "1"},
			"headers": {"x-trace": "abc"},
			"body": "{\"a\":1}"
		}`, out)
	})

	t.Run("mapping", func(t *testing.T) {
		out := p.Render("[[dump:mapping]]", in)
		assert.Contains(t, out, `"id":"user"`)
		assert.Contains(t, out, `"db":"users"`)
	})

	t.Run("unknown target", func(t *testing.T) {
		assert.Equal(t, "[]", p.Render("[[[dump:nothing]]]", in))
	})

	t.Run("no row without dbset", func(t *testing.T) {
		assert.Equal(t, "", p.Render("[[dump:row]]", input(t, nil, nil)))
	})
}

type panicStage struct{}

func (panicStage) Name() string                { return "boom" }
func (panicStage) Apply(string, *Input) string { panic("boom") }

func TestPipeline_StagePanicPassesThrough(t *testing.T) {
	p := NewWithStages(nil, &MatchStage{}, panicStage{}, &MarkerStage{})
	out := p.Render("<<id>>-{{random.int(3, 3)}}", input(t, nil, map[string]string{"id": "7"}))
	assert.Equal(t, "7-3", out)
}

func TestPipeline_NilInput(t *testing.T) {
	p := New(nil)
	assert.Equal(t, "a  b", p.Render("a <<x>> b", nil))
}
