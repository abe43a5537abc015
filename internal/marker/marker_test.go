package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want Line
	}{
		{"line comment begin", "// BEGIN: xyz", Line{Kind: Begin, Name: "xyz"}},
		{"indented begin", "    // BEGIN: method", Line{Kind: Begin, Name: "method"}},
		{"dotted name", "// BEGIN: day.end.bridges.Digest", Line{Kind: Begin, Name: "day.end.bridges.Digest"}},
		{"xml comment begin", "<!-- BEGIN: clazz -->", Line{Kind: Begin, Name: "clazz"}},
		{"start region", `// @start region="xyz"`, Line{Kind: Begin, Name: "xyz"}},
		{"start region in xml", `<!-- @start region="a-b" -->`, Line{Kind: Begin, Name: "a-b"}},
		{"end", "// END: xyz", Line{Kind: End, Name: "xyz", Close: CloseEnd}},
		{"finish", "// FINISH: xyz", Line{Kind: End, Name: "xyz", Close: CloseFinish}},
		{"end region", `// @end region="xyz"`, Line{Kind: End, Name: "xyz", Close: ClosePassthrough}},
		{"xml end", "<!-- END: clazz -->", Line{Kind: End, Name: "clazz", Close: CloseEnd}},
		{"generated guard begin", "// GEN-BEGIN: day.end.bridges.Digest", Line{Kind: Plain}},
		{"generated guard end", "// GEN-END: day.end.bridges.Digest", Line{Kind: Plain}},
		{"no leading space", "BEGIN: xyz", Line{Kind: Plain}},
		{"missing name", "// BEGIN:", Line{Kind: Plain}},
		{"code", "  public void get();", Line{Kind: Plain}},
		{"empty", "", Line{Kind: Plain}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestParseImport(t *testing.T) {
	t.Parallel()

	imp, ok := ParseImport("import java.io.File;")
	assert.True(t, ok)
	assert.Equal(t, Import{Path: "java.io.File"}, imp)
	assert.Equal(t, "File", imp.Name())

	imp, ok = ParseImport("  import java.util.*;")
	assert.True(t, ok)
	assert.Equal(t, Import{Path: "java.util", Wildcard: true}, imp)
	assert.Empty(t, imp.Name())

	_, ok = ParseImport("import static java.lang.Math.max;")
	assert.False(t, ok)
	_, ok = ParseImport("// import java.io.File;")
	assert.False(t, ok)
}

func TestParsePackage(t *testing.T) {
	t.Parallel()

	pkg, ok := ParsePackage("package org.apidesign.api.security;")
	assert.True(t, ok)
	assert.Equal(t, "org.apidesign.api.security", pkg)

	_, ok = ParsePackage("package main")
	assert.False(t, ok)
}

func TestCloseString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "FINISH", CloseFinish.String())
	assert.Equal(t, "END", CloseEnd.String())
	assert.Equal(t, "@end", ClosePassthrough.String())
	assert.Equal(t, "begin", Begin.String())
}
