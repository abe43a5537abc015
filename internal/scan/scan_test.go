package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codesnippet/internal/report"
	"github.com/jward/codesnippet/internal/source"
	"github.com/jward/codesnippet/internal/typeindex"
)

func newScanner(t *testing.T, types map[string]string) *Scanner {
	t.Helper()
	known := typeindex.JDK()
	for _, fqn := range types {
		known.Add(fqn)
	}
	s, err := New(Config{Types: types, Known: known, MaxLineLength: 80})
	require.NoError(t, err)
	return s
}

func scanText(s *Scanner, name, text string) Result {
	f := source.File{Path: "/src/" + name, Rel: name}
	return s.Lines(f, source.SplitLines(text))
}

func regionText(t *testing.T, res Result, name string) string {
	t.Helper()
	for _, r := range res.Regions {
		if r.Name == name {
			return r.Text
		}
	}
	t.Fatalf("region %q not found in %+v", name, res.Regions)
	return ""
}

func TestLines_FinishCompletesBraces(t *testing.T) {
	t.Parallel()

	s := newScanner(t, map[string]string{"I": "ahoj.I"})
	res := scanText(s, "ahoj/I.java", "package ahoj;\n// BEGIN: xyz\npublic interface I {\n// FINISH: xyz\n  public void get();\n}")

	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "java", res.Language)
	assert.Equal(t, "<b>public</b> <b>interface</b> {@link ahoj.I} {\n}\n", regionText(t, res, "xyz"))
}

func TestLines_StartEndPassthrough(t *testing.T) {
	t.Parallel()

	s := newScanner(t, map[string]string{"I": "ahoj.I"})
	res := scanText(s, "I.java", "package ahoj;\n// @start region=\"xyz\"\npublic interface I {\n// @end region=\"xyz\"\n  public void get();\n}")

	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "<b>public</b> <b>interface</b> {@link ahoj.I} {\n", regionText(t, res, "xyz"))
}

func TestLines_ImportsResolve(t *testing.T) {
	t.Parallel()

	s := newScanner(t, nil)
	single := scanText(s, "I.java", "package ahoj;\nimport java.io.File;\npublic interface I {\n// BEGIN: xyz\n  public File get();\n// FINISH: xyz\n}")
	assert.Equal(t, "<b>public</b> {@link java.io.File} get();\n", regionText(t, single, "xyz"))

	star := scanText(s, "I.java", "package ahoj;\nimport java.io.*;\npublic interface I {\n// BEGIN: xyz\n  public File get();\n// FINISH: xyz\n}")
	assert.Equal(t, "<b>public</b> {@link java.io.File} get();\n", regionText(t, star, "xyz"))

	lang := scanText(s, "I.java", "package ahoj;\npublic interface I {\n// BEGIN: xyz\n  public String get();\n// FINISH: xyz\n}")
	assert.Equal(t, "<b>public</b> {@link java.lang.String} get();\n", regionText(t, lang, "xyz"))
}

func TestLines_NestedRegionsDropMarkers(t *testing.T) {
	t.Parallel()

	s := newScanner(t, map[string]string{"I": "ahoj.I"})
	res := scanText(s, "I.java", strings.Join([]string{
		"package ahoj;",
		"// BEGIN: clazz",
		"public interface I {",
		"  // BEGIN: method",
		"  public void get();",
		"  // END: method",
		"}",
		"// END: clazz",
	}, "\n"))

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Regions, 2)
	assert.Equal(t, "clazz", res.Regions[0].Name)
	assert.Equal(t, "method", res.Regions[1].Name)

	clazz := regionText(t, res, "clazz")
	assert.NotContains(t, clazz, "BEGIN")
	assert.NotContains(t, clazz, "END")
	assert.Contains(t, clazz, "<b>interface</b> {@link ahoj.I}")
	assert.Equal(t, "<b>public</b> <b>void</b> get();\n", regionText(t, res, "method"))
}

func TestLines_NonTargetIsOnlyEscaped(t *testing.T) {
	t.Parallel()

	s := newScanner(t, nil)
	res := scanText(s, "I.xml", "<!-- BEGIN: clazz -->\n<interface name='I'/>\n<!-- END: clazz -->\n")

	assert.Equal(t, "xml", res.Language)
	assert.Equal(t, "&lt;interface name='I'/&gt;\n", regionText(t, res, "clazz"))
}

func TestLines_ImportsIgnoredOutsideTarget(t *testing.T) {
	t.Parallel()

	s := newScanner(t, nil)
	res := scanText(s, "notes.txt", "import java.io.File;\n// BEGIN: x\nFile\n// END: x\n")
	assert.Equal(t, "File\n", regionText(t, res, "x"))
}

func TestLines_Diagnostics(t *testing.T) {
	t.Parallel()

	s := newScanner(t, nil)

	tests := []struct {
		name     string
		text     string
		kind     report.Kind
		contains string
		regions  int
	}{
		{
			name:     "unpaired braces",
			text:     "package ahoj;\n// BEGIN: xyz\n   public interface I {\n     public void ahoj();\n// END: xyz\n   }\n",
			kind:     report.Structural,
			contains: "not paired",
			regions:  1,
		},
		{
			name:     "not closed",
			text:     "package ahoj;\n// BEGIN: clazz\nint x;\n\n",
			kind:     report.Structural,
			contains: "closed",
			regions:  0,
		},
		{
			name:     "unknown section",
			text:     "// END: ghost\n",
			kind:     report.Structural,
			contains: "Closing unknown section",
		},
		{
			name:     "closed twice",
			text:     "// BEGIN: a\nx\n// END: a\n// END: a\n",
			kind:     report.Structural,
			contains: "Closing not opened section",
			regions:  1,
		},
		{
			name:     "duplicate",
			text:     "// BEGIN: a\nx\n// END: a\n// BEGIN: a\ny\n// END: a\n",
			kind:     report.Structural,
			contains: "duplicate region name",
			regions:  1,
		},
		{
			name:     "long line",
			text:     "// BEGIN: d\nd;   DigestImplementation<?> impl = DigestImplementation.create(digestor, algorithm);\n// END: d\n",
			kind:     report.Validation,
			contains: "Line is too long",
			regions:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scanText(s, "C.java", tt.text)
			require.Len(t, res.Diagnostics, 1)
			d := res.Diagnostics[0]
			assert.Equal(t, report.Error, d.Severity)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Contains(t, d.Message, tt.contains)
			assert.Equal(t, "/src/C.java", d.File)
			assert.Len(t, res.Regions, tt.regions)
		})
	}
}

func TestLines_DuplicateLastWins(t *testing.T) {
	t.Parallel()

	s := newScanner(t, nil)
	res := scanText(s, "a.txt", "// BEGIN: a\nfirst\n// END: a\n// BEGIN: a\nsecond\n// END: a\n")
	assert.Equal(t, "second\n", regionText(t, res, "a"))
}

func TestLines_GenMarkersIgnored(t *testing.T) {
	t.Parallel()

	s := newScanner(t, nil)
	res := scanText(s, "C.java", strings.Join([]string{
		"// BEGIN: x",
		" * for buffer of data.",
		"// END: x",
		"// GEN-BEGIN: day.end.bridges.Digest",
		"d;   DigestImplementation<?> impl = DigestImplementation.create(digestor, algorithm);",
		"// GEN-END: day.end.bridges.Digest",
	}, "\n"))

	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Regions, 1)
	assert.Equal(t, "x", res.Regions[0].Name)
}

func TestLines_DedentBeforeLengthCheck(t *testing.T) {
	t.Parallel()

	s := newScanner(t, nil)
	res := scanText(s, "C.java", "// BEGIN: d\n   DigestImplementation<?> impl = DigestImplementation.create(digestor, algorithm);\n// END: d\n")
	assert.Empty(t, res.Diagnostics)
	assert.Contains(t, regionText(t, res, "d"), "DigestImplementation&lt;?&gt; impl")
}

func TestFile_ReadsAndReportsBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "I.java")
	bad := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(good, []byte("// BEGIN: a\nint x;\n// END: a\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte{0x89, 'P', 'N', 'G', 0xff}, 0o644))

	s := newScanner(t, nil)
	ctx := context.Background()

	res, err := s.File(ctx, source.File{Path: good, Rel: "I.java"})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, "<b>int</b> x;\n", regionText(t, res, "a"))

	res, err = s.File(ctx, source.File{Path: bad, Rel: "logo.png"})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, report.Notice, res.Diagnostics[0].Severity)
	assert.Equal(t, report.Binary, res.Diagnostics[0].Kind)

	res, err = s.File(ctx, source.File{Path: filepath.Join(dir, "gone.java"), Rel: "gone.java"})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, report.Resource, res.Diagnostics[0].Kind)
}
