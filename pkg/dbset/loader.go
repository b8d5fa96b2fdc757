package dbset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/stubdb/pkg/logging"
)

// Errors returned while loading datasets.
var (
	ErrDirUnreadable = errors.New("dataset directory unreadable")
	ErrNotReady      = errors.New("datasets not loaded")
)

// Option configures a load.
type Option func(*loadOptions)

type loadOptions struct {
	pattern string
	log     *slog.Logger
	onTable func(*Table)
	limit   int
}

// WithPattern only loads files whose name matches a doublestar pattern.
func WithPattern(pattern string) Option {
	return func(o *loadOptions) { o.pattern = pattern }
}

// WithLogger sets the logger used to report per-file progress.
func WithLogger(log *slog.Logger) Option {
	return func(o *loadOptions) { o.log = log }
}

// WithTableHook registers fn to be called once for every loaded table.
// It may be called from several goroutines at once.
func WithTableHook(fn func(*Table)) Option {
	return func(o *loadOptions) { o.onTable = fn }
}

// WithConcurrency limits the number of files parsed at the same time.
func WithConcurrency(n int) Option {
	return func(o *loadOptions) { o.limit = n }
}

// Loader tracks an asynchronous load of a dataset directory.
type Loader struct {
	ready chan struct{}
	store *Store
	err   error
}

// Ready is closed once every file has been loaded or the load failed.
func (l *Loader) Ready() <-chan struct{} { return l.ready }

// Done reports whether the load has finished without blocking.
func (l *Loader) Done() bool {
	select {
	case <-l.ready:
		return true
	default:
		return false
	}
}

// Store blocks until the load finishes and returns the result.
// It returns ErrNotReady wrapped with ctx.Err() if ctx ends first.
func (l *Loader) Store(ctx context.Context) (*Store, error) {
	select {
	case <-l.ready:
		return l.store, l.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

// Load reads every dataset file in dir and blocks until all are loaded.
// An empty dir yields an empty store.
func Load(ctx context.Context, dir string, opts ...Option) (*Store, error) {
	return LoadAsync(ctx, dir, opts...).Store(ctx)
}

// LoadAsync starts loading dir in the background. Each file is parsed in its own
// goroutine; the resulting Store only becomes visible after all of them finish.
func LoadAsync(ctx context.Context, dir string, opts ...Option) *Loader {
	o := loadOptions{pattern: "*"}
	for _, opt := range opts {
		opt(&o)
	}
	o.log = logging.WithComponent(o.log, "dbset")

	l := &Loader{ready: make(chan struct{})}

	if dir == "" {
		l.store = NewStore()
		close(l.ready)
		return l
	}

	files, err := listFiles(dir, o.pattern)
	if err != nil {
		l.err = err
		close(l.ready)
		return l
	}

	go func() {
		defer close(l.ready)
		l.store, l.err = loadFiles(ctx, dir, files, &o)
	}()

	return l
}

func listFiles(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirUnreadable, dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ok, err := doublestar.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid dataset pattern %q: %w", pattern, err)
		}
		if ok {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func loadFiles(ctx context.Context, dir string, files []string, o *loadOptions) (*Store, error) {
	g, ctx := errgroup.WithContext(ctx)
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}

	var mu sync.Mutex
	loaded := make(map[string]*Table, len(files))

	for _, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			t, err := loadFile(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			o.log.Info("dataset loaded",
				"dataset", t.Name(),
				"file", name,
				"rows", t.Len(),
				"duration", time.Since(start),
			)
			if o.onTable != nil {
				o.onTable(t)
			}
			mu.Lock()
			loaded[name] = t
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Index in file order so short-name collisions resolve the same way every run.
	tables := make([]*Table, 0, len(files))
	for _, name := range files {
		tables = append(tables, loaded[name])
	}
	return NewStore(tables...), nil
}

func loadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseTable(filepath.Base(path), f)
}
