// Package marker classifies single source lines into the directives the
// region scanner reacts to: region begin/end markers, import declarations and
// package declarations. Everything else is plain text.
//
// All patterns are matched against the whole line. A begin or end keyword must
// be preceded by a space, so generated-code guards such as "// GEN-BEGIN: x"
// are left alone.
package marker

import (
	"regexp"
	"strings"
)

// Kind is the classification of a line.
type Kind int

const (
	Plain Kind = iota
	Begin
	End
)

func (k Kind) String() string {
	switch k {
	case Begin:
		return "begin"
	case End:
		return "end"
	default:
		return "plain"
	}
}

// Close says how an end marker closes its region.
type Close int

const (
	// CloseNone is the zero value, used for non-end lines.
	CloseNone Close = iota
	// CloseEnd is "END:". Braces must balance.
	CloseEnd
	// CloseFinish is "FINISH:". Missing closing braces are synthesized first.
	CloseFinish
	// ClosePassthrough is `@end region="..."`. No brace handling at all.
	ClosePassthrough
)

func (c Close) String() string {
	switch c {
	case CloseEnd:
		return "END"
	case CloseFinish:
		return "FINISH"
	case ClosePassthrough:
		return "@end"
	default:
		return ""
	}
}

var (
	beginRe   = regexp.MustCompile(`^.* (BEGIN: *|@start *region=")([[:graph:]]+)["-> ]*$`)
	endRe     = regexp.MustCompile(`^.* (END: *|FINISH: *|@end *region=")([[:graph:]]+)["-> ]*$`)
	importRe  = regexp.MustCompile(`^ *import *([A-Za-z0-9.*]+);$`)
	packageRe = regexp.MustCompile(`^ *package *([A-Za-z0-9.]+);$`)
)

// Line is a classified source line.
type Line struct {
	Kind Kind
	// Name is the region name with every double quote removed.
	Name  string
	Close Close
}

// Classify returns the region directive carried by line, if any.
func Classify(line string) Line {
	if m := beginRe.FindStringSubmatch(line); m != nil {
		return Line{Kind: Begin, Name: regionName(m[2])}
	}
	if m := endRe.FindStringSubmatch(line); m != nil {
		c := ClosePassthrough
		switch {
		case strings.HasPrefix(m[1], "FINISH"):
			c = CloseFinish
		case strings.HasPrefix(m[1], "END"):
			c = CloseEnd
		}
		return Line{Kind: End, Name: regionName(m[2]), Close: c}
	}
	return Line{Kind: Plain}
}

func regionName(raw string) string {
	return strings.ReplaceAll(raw, `"`, "")
}

// Import is a parsed import declaration.
type Import struct {
	// Path is the imported name without the trailing ".*" for wildcards.
	Path     string
	Wildcard bool
}

// Name returns the simple name a single-type import binds.
func (i Import) Name() string {
	if i.Wildcard {
		return ""
	}
	return i.Path[strings.LastIndexByte(i.Path, '.')+1:]
}

// ParseImport recognizes "import a.b.C;" and "import a.b.*;".
func ParseImport(line string) (Import, bool) {
	m := importRe.FindStringSubmatch(line)
	if m == nil {
		return Import{}, false
	}
	if p, ok := strings.CutSuffix(m[1], ".*"); ok {
		return Import{Path: p, Wildcard: true}, true
	}
	return Import{Path: m[1]}, true
}

// ParsePackage recognizes "package a.b.c;" and returns the package name.
func ParsePackage(line string) (string, bool) {
	m := packageRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
