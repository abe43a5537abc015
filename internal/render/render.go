// Package render turns escaped Java source text into documentation markup:
// keywords in bold, line comments and string literals in italics, and type
// names linked to their fully-qualified declarations.
package render

import (
	"strings"

	"github.com/jward/codesnippet/internal/marker"
)

// DefaultPackage is the package every Java file imports implicitly.
const DefaultPackage = "java.lang"

// TypeSet confirms that a fully-qualified name denotes a real type.
type TypeSet interface {
	Has(fqn string) bool
}

// Imports is the import context of one source file.
type Imports struct {
	// Single maps a simple name to its fully-qualified name.
	Single map[string]string
	// Wildcards lists packages imported with ".*", in first-seen order.
	Wildcards []string
}

// NewImports returns an import context pre-seeded with seed, which is copied.
func NewImports(seed map[string]string) *Imports {
	single := make(map[string]string, len(seed))
	for k, v := range seed {
		single[k] = v
	}
	return &Imports{Single: single}
}

// Add records one import declaration. A later single-type import of the
// same simple name replaces the earlier one.
func (im *Imports) Add(imp marker.Import) {
	if !imp.Wildcard {
		im.Single[imp.Name()] = imp.Path
		return
	}
	for _, p := range im.Wildcards {
		if p == imp.Path {
			return
		}
	}
	im.Wildcards = append(im.Wildcards, imp.Path)
}

// Renderer renders escaped source text. The zero value resolves only names
// present in the import context.
type Renderer struct {
	known          TypeSet
	defaultPackage string
}

// New returns a Renderer confirming default-package and wildcard candidates
// against known.
func New(known TypeSet) *Renderer {
	return &Renderer{known: known, defaultPackage: DefaultPackage}
}

// Resolve returns the fully-qualified name for a simple name: explicit
// imports first, then the default package, then wildcard packages in
// declaration order.
func (r *Renderer) Resolve(name string, im *Imports) (string, bool) {
	if im != nil {
		if fqn, ok := im.Single[name]; ok {
			return fqn, true
		}
	}
	if r.known == nil {
		return "", false
	}
	if r.defaultPackage != "" {
		if fqn := r.defaultPackage + "." + name; r.known.Has(fqn) {
			return fqn, true
		}
	}
	if im != nil {
		for _, p := range im.Wildcards {
			if fqn := p + "." + name; r.known.Has(fqn) {
				return fqn, true
			}
		}
	}
	return "", false
}

// Render tokenizes escaped text and decorates every token. Text between
// tokens, and the entities produced by Escape, are copied verbatim. The word
// after an escaped '@' is a token of its own, so annotation names are linked.
func (r *Renderer) Render(text string, im *Imports) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/2)

	for i := 0; i < len(text); {
		if n := entityAt(text, i); n > 0 {
			sb.WriteString(text[i : i+n])
			i += n
			continue
		}

		ch := text[i]
		switch {
		case isWordByte(ch):
			j := i + 1
			for j < len(text) && isWordByte(text[j]) {
				j++
			}
			r.word(&sb, text[i:j], im)
			i = j
			continue

		case ch == '/' && strings.HasPrefix(text[i:], "//"):
			if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
				sb.WriteString("<em>")
				sb.WriteString(text[i : i+nl])
				sb.WriteString("</em>\n")
				i += nl + 1
				continue
			}

		case ch == '"':
			if end := strings.IndexByte(text[i+1:], '"'); end >= 0 {
				sb.WriteString("<em>")
				sb.WriteString(text[i : i+end+2])
				sb.WriteString("</em>")
				i += end + 2
				continue
			}
		}

		sb.WriteByte(ch)
		i++
	}
	return sb.String()
}

func (r *Renderer) word(sb *strings.Builder, w string, im *Imports) {
	if IsKeyword(w) {
		sb.WriteString("<b>")
		sb.WriteString(w)
		sb.WriteString("</b>")
		return
	}
	if fqn, ok := r.Resolve(w, im); ok {
		sb.WriteString("{@link ")
		sb.WriteString(fqn)
		sb.WriteString("}")
		return
	}
	sb.WriteString(w)
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
