// Package lang maps file names to languages and provides the tree-sitter
// grammar for the target language.
package lang

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Target is the language whose keywords and type references are rendered.
const Target = "java"

// extToLanguage maps file extensions to canonical language names. Files with
// other extensions are still scanned for regions, they just get no language.
var extToLanguage = map[string]string{
	".java":       "java",
	".xml":        "xml",
	".html":       "html",
	".htm":        "html",
	".properties": "properties",
	".js":         "javascript",
	".ts":         "typescript",
	".go":         "go",
	".py":         "python",
	".kt":         "kotlin",
	".groovy":     "groovy",
	".c":          "c",
	".h":          "c",
	".cpp":        "cpp",
	".md":         "markdown",
}

var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"java": java.GetLanguage(),
		}
	})
}

// ForFile returns the canonical language name for path based on its
// extension. Returns ("", false) if the extension is not recognized.
func ForFile(path string) (string, bool) {
	l, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// IsTarget reports whether path is target-language source. Only the exact
// ".java" suffix counts.
func IsTarget(path string) bool {
	return strings.HasSuffix(filepath.Base(path), ".java")
}

// TypeName returns the file name without the ".java" suffix, or "" for
// files that are not target-language source.
func TypeName(path string) string {
	name, ok := strings.CutSuffix(filepath.Base(path), ".java")
	if !ok {
		return ""
	}
	return name
}

// Grammar returns the tree-sitter language for a canonical language name.
func Grammar(language string) (*sitter.Language, bool) {
	initGrammars()
	l, ok := langToGrammar[language]
	return l, ok
}
