package template

import (
	"fmt"
	"log/slog"
	mathrand "math/rand/v2"

	"github.com/getmockd/stubdb/pkg/dbset"
	"github.com/getmockd/stubdb/pkg/logging"
	"github.com/getmockd/stubdb/pkg/mapping"
	"github.com/getmockd/stubdb/pkg/resolver"
)

// Input is everything one render may reference. It belongs to a single request.
type Input struct {
	Mapping  *mapping.Mapping
	Captures resolver.Captures
	Request  *resolver.Request

	// Rand seeds random markers. Nil uses the global source.
	Rand *mathrand.Rand
}

// NewInput builds an Input from a resolver match.
func NewInput(req *resolver.Request, m *resolver.Match) *Input {
	in := &Input{Request: req}
	if m != nil {
		in.Mapping = m.Mapping
		in.Captures = m.Captures
	}
	return in
}

// Stage is one substitution pass.
type Stage interface {
	Name() string
	Apply(body string, in *Input) string
}

// Pipeline applies its stages in a fixed order. It holds only read-only state
// and a synchronized sequence store, so one Pipeline serves all requests.
type Pipeline struct {
	stages []Stage
	log    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	fallback  string
	log       *slog.Logger
	sequences *SequenceStore
}

// WithDatasetFallback sets what unresolved dataset placeholders become:
// mapping.FallbackEmpty (default) or mapping.FallbackKeep.
func WithDatasetFallback(fallback string) Option {
	return func(o *options) { o.fallback = fallback }
}

// WithLogger sets the logger for unresolved placeholders and stage failures.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithSequences shares a sequence store between pipelines.
func WithSequences(s *SequenceStore) Option {
	return func(o *options) { o.sequences = s }
}

// New builds the standard four-stage pipeline over store. A nil store behaves
// like an empty one.
func New(store *dbset.Store, opts ...Option) *Pipeline {
	o := options{fallback: mapping.FallbackEmpty}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sequences == nil {
		o.sequences = NewSequenceStore()
	}
	log := logging.WithComponent(o.log, "template")

	return NewWithStages(log,
		&DatasetStage{Store: store, Fallback: o.fallback, log: log},
		&MatchStage{log: log},
		&MarkerStage{Sequences: o.sequences},
		&DumpStage{Store: store},
	)
}

// NewWithStages builds a pipeline from custom stages.
func NewWithStages(log *slog.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, log: logging.OrNop(log)}
}

// Render runs body through every stage.
func (p *Pipeline) Render(body string, in *Input) string {
	if in == nil {
		in = &Input{}
	}
	for _, s := range p.stages {
		body = p.apply(s, body, in)
	}
	return body
}

// Stages returns the stage names in order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

func (p *Pipeline) apply(s Stage, body string, in *Input) (out string) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("template stage failed", "stage", s.Name(), "panic", fmt.Sprint(r))
			out = body
		}
	}()
	return s.Apply(body, in)
}
