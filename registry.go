package codesnippet

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/codesnippet/internal/report"
)

var (
	// ErrNotFound is returned when no snippet matches a lookup.
	ErrNotFound = errors.New("snippet not found")
	// ErrAmbiguous is returned by global lookups of a region name that more
	// than one file defines.
	ErrAmbiguous = errors.New("snippet region is ambiguous")
)

// Registry holds the snippets of one run. It is written by a single builder
// and read-only once returned from Engine.Registry.
type Registry struct {
	byFile   map[string]map[string]*Snippet
	byRegion map[string][]*Snippet
	types    map[string]string
}

// NewRegistry returns an empty registry. types is the type index of the
// run; it is copied.
func NewRegistry(types map[string]string) *Registry {
	t := make(map[string]string, len(types))
	for k, v := range types {
		t[k] = v
	}
	return &Registry{
		byFile:   make(map[string]map[string]*Snippet),
		byRegion: make(map[string][]*Snippet),
		types:    t,
	}
}

// CleanFile normalizes a relative file path into registry form.
func CleanFile(file string) string {
	return path.Clean(filepath.ToSlash(strings.TrimSpace(file)))
}

// Register stores s under its file and region, replacing an earlier snippet
// with the same key. When another file already registered the region name,
// the returned warning describes the clash; the snippet is stored anyway.
func (r *Registry) Register(s Snippet) *Diagnostic {
	s.File = CleanFile(s.File)
	sn := &s

	regions := r.byFile[s.File]
	if regions == nil {
		regions = make(map[string]*Snippet)
		r.byFile[s.File] = regions
	}
	regions[s.Region] = sn

	var clash *Snippet
	list := r.byRegion[s.Region]
	replaced := false
	for i, other := range list {
		if other.File == s.File {
			list[i] = sn
			replaced = true
			continue
		}
		if clash == nil {
			clash = other
		}
	}
	if !replaced {
		list = append(list, sn)
	}
	r.byRegion[s.Region] = list

	if clash == nil {
		return nil
	}
	return &Diagnostic{
		Severity: report.Warning,
		Kind:     report.Registry,
		File:     s.Path,
		Region:   s.Region,
		Message:  fmt.Sprintf("ambiguous region %s: defined in %s and %s", s.Region, clash.File, s.File),
	}
}

// Snippet returns the snippet for region in file.
func (r *Registry) Snippet(file, region string) (Snippet, error) {
	if sn, ok := r.byFile[CleanFile(file)][region]; ok {
		return *sn, nil
	}
	return Snippet{}, fmt.Errorf("region %s in %s: %w", region, file, ErrNotFound)
}

// GlobalSnippet returns the only snippet named region.
func (r *Registry) GlobalSnippet(region string) (Snippet, error) {
	list := r.byRegion[region]
	switch len(list) {
	case 0:
		return Snippet{}, fmt.Errorf("region %s: %w", region, ErrNotFound)
	case 1:
		return *list[0], nil
	default:
		files := make([]string, len(list))
		for i, sn := range list {
			files[i] = sn.File
		}
		return Snippet{}, fmt.Errorf("region %s in %s: %w", region, strings.Join(files, ", "), ErrAmbiguous)
	}
}

// FindSnippet returns the rendered text of region in file.
func (r *Registry) FindSnippet(file, region string) (string, error) {
	sn, err := r.Snippet(file, region)
	return sn.Text, err
}

// FindGlobalSnippet returns the rendered text of the only region named
// region.
func (r *Registry) FindGlobalSnippet(region string) (string, error) {
	sn, err := r.GlobalSnippet(region)
	return sn.Text, err
}

// Snippets lists every snippet sorted by file and region.
func (r *Registry) Snippets() []Snippet {
	out := make([]Snippet, 0, r.Len())
	for _, regions := range r.byFile {
		for _, sn := range regions {
			out = append(out, *sn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// Len returns the number of stored snippets.
func (r *Registry) Len() int {
	n := 0
	for _, regions := range r.byFile {
		n += len(regions)
	}
	return n
}

// Types returns a copy of the type index the snippets were rendered with.
func (r *Registry) Types() map[string]string {
	out := make(map[string]string, len(r.types))
	for k, v := range r.types {
		out[k] = v
	}
	return out
}
