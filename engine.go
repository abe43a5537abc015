package codesnippet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jward/codesnippet/internal/log"
	"github.com/jward/codesnippet/internal/region"
	"github.com/jward/codesnippet/internal/report"
	"github.com/jward/codesnippet/internal/scan"
	"github.com/jward/codesnippet/internal/source"
	"github.com/jward/codesnippet/internal/typeindex"
)

// Engine collects search roots and settings and builds the snippet
// Registry on first use.
type Engine struct {
	mu sync.Mutex

	roots         []SearchRoot
	reporter      Reporter
	logger        *slog.Logger
	maxLineLength int
	encoding      string
	knownTypes    []string
	excludes      []string

	// useParallel enables the worker pool for scanning files.
	useParallel bool

	registry    *Registry
	diagnostics []Diagnostic
	stats       BuildStats
}

// BuildStats summarizes the most recent successful build.
type BuildStats struct {
	Roots int
	// Files counts every file handed to the scanner; Skipped the ones that
	// could not be read or decoded.
	Files      int
	Skipped    int
	Types      int
	KnownTypes int
	Snippets   int
	// Errors counts error-severity diagnostics emitted during the build.
	Errors   int
	Duration time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter delivers every diagnostic to r and keeps building. Without a
// reporter the first fatal diagnostic aborts the build and is returned.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithLogger sets the logger used for progress and for non-fatal
// diagnostics when there is no reporter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxLineLength sets the longest allowed line of a snippet, in
// characters. n <= 0 disables the check.
func WithMaxLineLength(n int) Option {
	return func(e *Engine) {
		e.maxLineLength = n
	}
}

// WithEncoding sets the character encoding of the scanned files.
func WithEncoding(name string) Option {
	return func(e *Engine) {
		e.encoding = name
	}
}

// WithKnownTypes adds fully-qualified names that default-package and
// wildcard-import candidates are confirmed against, on top of the bundled
// standard library manifest and the type index.
func WithKnownTypes(fqns ...string) Option {
	return func(e *Engine) {
		e.knownTypes = append(e.knownTypes, fqns...)
	}
}

// WithExcludes skips files and directories matching any of the doublestar
// patterns, relative to their search root.
func WithExcludes(patterns ...string) Option {
	return func(e *Engine) {
		e.excludes = append(e.excludes, patterns...)
	}
}

// WithParallel controls parallel scanning. When true, files of a root are
// scanned by a worker pool and their results applied in path order by a
// single writer, so the outcome matches serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// New creates an Engine. It fails on an unknown encoding or a malformed
// exclude pattern.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:        slog.Default(),
		maxLineLength: region.DefaultMaxLineLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	if _, err := source.NewDecoder(e.encoding); err != nil {
		return nil, fmt.Errorf("codesnippet: %w", err)
	}
	if err := source.ValidatePatterns(e.excludes); err != nil {
		return nil, fmt.Errorf("codesnippet: %w", err)
	}
	e.logger = log.WithComponent(e.logger, "engine")
	return e, nil
}

// AddSearchRoot registers a directory to scan. Roots are scanned in the
// order they were added.
func (e *Engine) AddSearchRoot(path string, visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.roots = append(e.roots, SearchRoot{Path: path, Visible: visible})
}

// Roots returns the registered search roots.
func (e *Engine) Roots() []SearchRoot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SearchRoot, len(e.roots))
	copy(out, e.roots)
	return out
}

// SetMaxLineLength changes the line length limit for the next build.
func (e *Engine) SetMaxLineLength(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxLineLength = n
}

// SetEncoding changes the character encoding for the next build.
func (e *Engine) SetEncoding(name string) error {
	if _, err := source.NewDecoder(name); err != nil {
		return fmt.Errorf("codesnippet: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.encoding = name
	return nil
}

// Reset drops the memoized registry so the next lookup rebuilds it.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry = nil
	e.diagnostics = nil
	e.stats = BuildStats{}
}

// Diagnostics returns the diagnostics of the most recent build.
func (e *Engine) Diagnostics() []Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Diagnostic, len(e.diagnostics))
	copy(out, e.diagnostics)
	return out
}

// Stats returns the summary of the most recent successful build.
func (e *Engine) Stats() BuildStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Registry builds the registry on first call and returns the memoized one
// afterwards. A failed build is not memoized.
func (e *Engine) Registry(ctx context.Context) (*Registry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.registry != nil {
		return e.registry, nil
	}

	sink := report.NewSink(e.reporter, e.logger)
	var st BuildStats
	reg, err := e.build(ctx, sink, &st)
	e.diagnostics = sink.Diagnostics()
	if err != nil {
		return nil, fmt.Errorf("codesnippet: build registry: %w", err)
	}
	e.registry = reg
	e.stats = st
	return reg, nil
}

// FindSnippet returns the rendered text of region in file, where file is
// relative to its search root.
func (e *Engine) FindSnippet(ctx context.Context, file, region string) (string, error) {
	reg, err := e.Registry(ctx)
	if err != nil {
		return "", err
	}
	return reg.FindSnippet(file, region)
}

// FindGlobalSnippet returns the rendered text of the only region named
// region across all roots.
func (e *Engine) FindGlobalSnippet(ctx context.Context, region string) (string, error) {
	reg, err := e.Registry(ctx)
	if err != nil {
		return "", err
	}
	return reg.FindGlobalSnippet(region)
}

// build runs the type index pass over visible roots, then scans every root.
func (e *Engine) build(ctx context.Context, sink *report.Sink, st *BuildStats) (*Registry, error) {
	start := time.Now()

	dec, err := source.NewDecoder(e.encoding)
	if err != nil {
		return nil, err
	}

	var visible []string
	for _, r := range e.roots {
		if r.Visible {
			visible = append(visible, r.Path)
		}
	}
	types, err := typeindex.Build(ctx, visible, typeindex.Options{
		Excludes: e.excludes,
		Decoder:  dec,
		Sink:     sink,
		Logger:   e.logger,
	})
	if err != nil {
		return nil, err
	}

	known := typeindex.JDK()
	known.AddIndex(types)
	known.Add(e.knownTypes...)

	sc, err := scan.New(scan.Config{
		Types:         types,
		Known:         known,
		MaxLineLength: e.maxLineLength,
		Decoder:       dec,
	})
	if err != nil {
		return nil, err
	}

	reg := NewRegistry(types)
	for _, root := range e.roots {
		if err := e.scanRoot(ctx, sc, sink, reg, root, st); err != nil {
			return nil, err
		}
	}

	st.Roots = len(e.roots)
	st.Types = len(types)
	st.KnownTypes = known.Len()
	st.Snippets = reg.Len()
	st.Errors = sink.Count(report.Error)
	st.Duration = time.Since(start)

	e.logger.Debug("registry built",
		"roots", st.Roots,
		"files", st.Files,
		"skipped", st.Skipped,
		"types", st.Types,
		"known_types", st.KnownTypes,
		"snippets", st.Snippets,
		log.DurationKey, st.Duration.Milliseconds(),
	)
	return reg, nil
}

func (e *Engine) scanRoot(ctx context.Context, sc *scan.Scanner, sink *report.Sink, reg *Registry, root SearchRoot, st *BuildStats) error {
	if fi, err := os.Stat(root.Path); err != nil || !fi.IsDir() {
		return sink.Emitf(report.Warning, report.Resource, "", "Cannot scan %s not a directory!", root.Path)
	}
	files, err := source.ListFiles(root.Path, e.excludes)
	if err != nil {
		return sink.Emitf(report.Error, report.Resource, "", "Cannot read %s: %v", root.Path, err)
	}
	e.logger.Debug("scanning root", log.RootKey, root.Path, "files", len(files))

	apply := func(res scan.Result) error {
		return e.apply(sink, reg, root, res, st)
	}
	if e.useParallel {
		return e.scanFilesParallel(ctx, sc, files, apply)
	}
	return e.scanFilesSerial(ctx, sc, files, apply)
}

func (e *Engine) scanFilesSerial(ctx context.Context, sc *scan.Scanner, files []source.File, apply func(scan.Result) error) error {
	for _, f := range files {
		res, err := sc.File(ctx, f)
		if err != nil {
			return err
		}
		if err := apply(res); err != nil {
			return err
		}
	}
	return nil
}

// apply reports the diagnostics of one file and registers its regions.
func (e *Engine) apply(sink *report.Sink, reg *Registry, root SearchRoot, res scan.Result, st *BuildStats) error {
	st.Files++
	if res.Skipped {
		st.Skipped++
	}
	for _, d := range res.Diagnostics {
		if err := sink.Emit(d); err != nil {
			return err
		}
	}
	for _, r := range res.Regions {
		clash := reg.Register(Snippet{
			Root:     root.Path,
			File:     res.File.Rel,
			Path:     res.File.Path,
			Region:   r.Name,
			Text:     r.Text,
			Language: res.Language,
		})
		if clash != nil {
			if err := sink.Emit(*clash); err != nil {
				return err
			}
		}
	}
	return nil
}
