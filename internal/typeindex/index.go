// Package typeindex maps bare type names declared under the visible roots to
// their fully-qualified names, and holds the set of known external types used
// to confirm default-package and wildcard-import candidates.
package typeindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/codesnippet/internal/lang"
	"github.com/jward/codesnippet/internal/log"
	"github.com/jward/codesnippet/internal/marker"
	"github.com/jward/codesnippet/internal/report"
	"github.com/jward/codesnippet/internal/source"
)

// Index maps a bare type name to its fully-qualified name. It is built once
// and treated as read-only afterwards.
type Index map[string]string

// FQNs returns every fully-qualified name in the index.
func (ix Index) FQNs() []string {
	out := make([]string, 0, len(ix))
	for _, fqn := range ix {
		out = append(out, fqn)
	}
	sort.Strings(out)
	return out
}

// Options configures Build.
type Options struct {
	Excludes []string
	// Decoder defaults to UTF-8.
	Decoder *source.Decoder
	// Sink receives warnings for unusable roots and unreadable files.
	Sink   *report.Sink
	Logger *slog.Logger
	// SkipSyntax disables tree-sitter extraction of secondary top-level
	// types, leaving only the file-name based entries.
	SkipSyntax bool
}

// Build walks every root and indexes each target-language file: the file's
// type name is mapped to "package.Name" for every package declaration line,
// and other top-level types declared in the same file are added the same way.
// Later entries replace earlier ones. The returned error is non-nil only when
// the sink fails fast or ctx is done.
func Build(ctx context.Context, roots []string, opts Options) (Index, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sink == nil {
		opts.Sink = report.NewSink(nil, opts.Logger)
	}
	if opts.Decoder == nil {
		d, err := source.NewDecoder("")
		if err != nil {
			return nil, err
		}
		opts.Decoder = d
	}
	logger := log.WithComponent(opts.Logger, "typeindex")

	b := &builder{
		opts:   opts,
		logger: logger,
		index:  make(Index),
	}
	if !opts.SkipSyntax {
		if g, ok := lang.Grammar(lang.Target); ok {
			b.parser = sitter.NewParser()
			defer b.parser.Close()
			b.parser.SetLanguage(g)
		}
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.root(ctx, root); err != nil {
			return nil, err
		}
	}
	logger.Debug("type index built", "types", len(b.index))
	return b.index, nil
}

type builder struct {
	opts   Options
	logger *slog.Logger
	parser *sitter.Parser
	index  Index
}

func (b *builder) root(ctx context.Context, root string) error {
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return b.opts.Sink.Emitf(report.Warning, report.Resource, "", "Cannot scan %s not a directory!", root)
	}
	files, err := source.ListFiles(root, b.opts.Excludes)
	if err != nil {
		return b.opts.Sink.Emitf(report.Error, report.Resource, "", "Cannot read %s: %v", root, err)
	}
	for _, f := range files {
		if !lang.IsTarget(f.Path) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.file(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) file(ctx context.Context, f source.File) error {
	lines, err := b.opts.Decoder.ReadLines(f.Path)
	switch {
	case errors.Is(err, source.ErrMalformed):
		return b.opts.Sink.Emit(report.Diagnostic{
			Severity: report.Notice,
			Kind:     report.Binary,
			File:     f.Path,
			Message:  fmt.Sprintf("Skipping binary file %s", f.Path),
		})
	case err != nil:
		return b.opts.Sink.Emitf(report.Error, report.Resource, f.Path, "Cannot read %s %v", f.Path, err)
	}

	name := lang.TypeName(f.Path)
	pkg := ""
	for _, line := range lines {
		if p, ok := marker.ParsePackage(line); ok {
			pkg = p
			b.index[name] = p + "." + name
		}
	}
	if pkg == "" || b.parser == nil {
		return nil
	}

	for _, other := range b.topLevelTypes(ctx, f, lines) {
		if other == name {
			continue
		}
		b.index[other] = pkg + "." + other
	}
	return nil
}

// declarationKinds are the node types of top-level type declarations.
var declarationKinds = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

// topLevelTypes returns the names of the types declared directly in the
// compilation unit. Parse failures are logged and yield nothing.
func (b *builder) topLevelTypes(ctx context.Context, f source.File, lines []string) []string {
	src := []byte(strings.Join(lines, "\n"))
	tree, err := b.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		b.logger.Debug("parse failed", log.FileKey, f.Rel, "error", err)
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var names []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child == nil || !declarationKinds[child.Type()] {
			continue
		}
		if n := child.ChildByFieldName("name"); n != nil {
			names = append(names, n.Content(src))
		}
	}
	return names
}
