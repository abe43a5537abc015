// Package scan finds the snippet regions of a single file and renders them.
//
// Scanning a file is a pure function of its lines and the shared read-only
// inputs (type index, known types, settings), so files can be scanned
// concurrently and their results applied in any order the caller chooses.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jward/codesnippet/internal/lang"
	"github.com/jward/codesnippet/internal/marker"
	"github.com/jward/codesnippet/internal/region"
	"github.com/jward/codesnippet/internal/render"
	"github.com/jward/codesnippet/internal/report"
	"github.com/jward/codesnippet/internal/source"
)

// Region is one closed, rendered region.
type Region struct {
	Name string
	Text string
}

// Result is everything learned from one file. Diagnostics are in the order
// they were found.
type Result struct {
	File     source.File
	Language string
	// Regions holds the closed regions sorted by name.
	Regions     []Region
	Diagnostics []report.Diagnostic
	// Skipped is set when the file could not be read or decoded.
	Skipped bool
}

// Scanner scans files. It is safe for concurrent use once constructed.
type Scanner struct {
	renderer      *render.Renderer
	types         map[string]string
	maxLineLength int
	decoder       *source.Decoder
}

// Config holds the inputs shared by every file of a run.
type Config struct {
	// Types seeds each file's import context. It is not modified.
	Types map[string]string
	// Known confirms default-package and wildcard candidates.
	Known render.TypeSet
	// MaxLineLength <= 0 disables the long line check.
	MaxLineLength int
	// Decoder defaults to UTF-8.
	Decoder *source.Decoder
}

// New returns a Scanner for cfg.
func New(cfg Config) (*Scanner, error) {
	dec := cfg.Decoder
	if dec == nil {
		d, err := source.NewDecoder("")
		if err != nil {
			return nil, err
		}
		dec = d
	}
	return &Scanner{
		renderer:      render.New(cfg.Known),
		types:         cfg.Types,
		maxLineLength: cfg.MaxLineLength,
		decoder:       dec,
	}, nil
}

// File reads, decodes and scans f. Read and decode failures are reported in
// the result, never returned.
func (s *Scanner) File(ctx context.Context, f source.File) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	lines, err := s.decoder.ReadLines(f.Path)
	if err != nil {
		res := Result{File: f, Skipped: true}
		if errors.Is(err, source.ErrMalformed) {
			res.Diagnostics = []report.Diagnostic{{
				Severity: report.Notice,
				Kind:     report.Binary,
				File:     f.Path,
				Message:  fmt.Sprintf("Skipping binary file %s", f.Path),
			}}
		} else {
			res.Diagnostics = []report.Diagnostic{{
				Severity: report.Error,
				Kind:     report.Resource,
				File:     f.Path,
				Message:  fmt.Sprintf("Cannot read %s %v", f.Path, err),
			}}
		}
		return res, nil
	}
	return s.Lines(f, lines), nil
}

type slot struct {
	acc    *region.Accumulator
	closed bool
	text   string
}

// Lines scans already decoded lines of f.
func (s *Scanner) Lines(f source.File, lines []string) Result {
	res := Result{File: f}
	res.Language, _ = lang.ForFile(f.Path)
	target := lang.IsTarget(f.Path)

	imports := render.NewImports(s.types)
	slots := make(map[string]*slot)

	diag := func(sev report.Severity, kind report.Kind, name, format string, args ...any) {
		res.Diagnostics = append(res.Diagnostics, report.Diagnostic{
			Severity: sev,
			Kind:     kind,
			File:     f.Path,
			Region:   name,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, line := range lines {
		if target {
			if imp, ok := marker.ParseImport(line); ok {
				imports.Add(imp)
			}
		}

		m := marker.Classify(line)
		switch m.Kind {
		case marker.Begin:
			if _, dup := slots[m.Name]; dup {
				diag(report.Error, report.Structural, m.Name, "duplicate region name %s in %s", m.Name, f.Path)
			}
			slots[m.Name] = &slot{acc: region.New()}
			continue

		case marker.End:
			sl, ok := slots[m.Name]
			switch {
			case !ok:
				diag(report.Error, report.Structural, m.Name, "Closing unknown section: %s in %s", m.Name, f.Path)
			case sl.closed:
				diag(report.Error, report.Structural, m.Name, "Closing not opened section: %s in %s", m.Name, f.Path)
			default:
				text, issues := sl.acc.Close(m.Close, s.maxLineLength)
				for _, iss := range issues {
					switch iss.Kind {
					case region.IssueLongLine:
						diag(report.Error, report.Validation, m.Name, "Line is too long in: %s (%s)\n%s", f.Path, iss.Message, text)
					default:
						diag(report.Error, report.Structural, m.Name, "%s in %s\n%s", iss.Message, f.Path, text)
					}
				}
				text = render.Escape(text)
				if target {
					text = s.renderer.Render(text, imports)
				}
				sl.closed, sl.text, sl.acc = true, text, nil
			}
			continue
		}

		for _, sl := range slots {
			if !sl.closed {
				sl.acc.Append(line)
			}
		}
	}

	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sl := slots[name]
		if !sl.closed {
			diag(report.Error, report.Structural, name, "Not closed section %s in %s", name, f.Path)
			continue
		}
		res.Regions = append(res.Regions, Region{Name: name, Text: sl.text})
	}
	return res
}
