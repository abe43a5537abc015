package codesnippet

import "github.com/jward/codesnippet/internal/report"

// Public aliases for the diagnostic types produced while building the
// registry. They are identical to the internal types; no conversion is
// needed.

type Diagnostic = report.Diagnostic
type Reporter = report.Reporter
type ReporterFunc = report.ReporterFunc
type Severity = report.Severity
type Kind = report.Kind

const (
	Notice  = report.Notice
	Warning = report.Warning
	Error   = report.Error
)

const (
	Structural = report.Structural
	Resource   = report.Resource
	Binary     = report.Binary
	Validation = report.Validation
	Ambiguity  = report.Registry
)

// SearchRoot is a directory scanned for regions. Visible roots also feed
// the type index used to link type names.
type SearchRoot struct {
	Path    string
	Visible bool
}

// Snippet is one closed, rendered region.
type Snippet struct {
	// Root is the search root the file was found under.
	Root string
	// File is the slash-separated path of the file relative to Root.
	File string
	// Path is the path the file was read from.
	Path     string
	Region   string
	Text     string
	Language string
}

// Pre wraps rendered snippet text the way it is embedded in documentation.
func Pre(code string) string {
	return "<pre class='snippet'>" + code + "</pre>"
}
