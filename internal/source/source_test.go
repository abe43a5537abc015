package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func rels(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Rel
	}
	return out
}

func TestListFiles_LexicalOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "b/Z.java", "")
	writeFile(t, root, "a/Y.java", "")
	writeFile(t, root, "a/X.xml", "")
	writeFile(t, root, "top.txt", "")

	files, err := ListFiles(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/X.xml", "a/Y.java", "b/Z.java", "top.txt"}, rels(files))
	assert.Equal(t, filepath.Join(root, "a", "X.xml"), files[0].Path)
}

func TestListFiles_Excludes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, ".git/config", "")
	writeFile(t, root, "build/Gen.java", "")
	writeFile(t, root, "src/A.java", "")
	writeFile(t, root, "src/A.class", "")

	files, err := ListFiles(root, []string{"**/.git", "build", "**/*.class"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/A.java"}, rels(files))
}

func TestListFiles_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
}

func TestValidatePatterns(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidatePatterns([]string{"**/*.java", "build/**"}))
	require.Error(t, ValidatePatterns([]string{"[unterminated"}))
}

func TestDecoder_UTF8(t *testing.T) {
	t.Parallel()

	d, err := NewDecoder("")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", d.Name())

	text, err := d.Decode([]byte("Příliš žluťoučký"))
	require.NoError(t, err)
	assert.Equal(t, "Příliš žluťoučký", text)

	_, err = d.Decode([]byte{0xff, 0xfe, 0x00, 0xc3})
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDecoder_Legacy(t *testing.T) {
	t.Parallel()

	d, err := NewDecoder("ISO-8859-2")
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-2", d.Name())

	// 0xBE is z with caron in ISO-8859-2.
	text, err := d.Decode([]byte{'a', 0xbe, 'b'})
	require.NoError(t, err)
	assert.Equal(t, "ažb", text)
}

func TestNewDecoder_Unknown(t *testing.T) {
	t.Parallel()

	_, err := NewDecoder("klingon-8")
	require.Error(t, err)
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "A.java", "a\r\nb\rc\n")
	writeFile(t, root, "bin.dat", string([]byte{0xc3, 0x28}))

	d, err := NewDecoder("UTF-8")
	require.NoError(t, err)

	lines, err := d.ReadLines(filepath.Join(root, "A.java"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)

	_, err = d.ReadLines(filepath.Join(root, "bin.dat"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = d.ReadLines(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{""}, SplitLines("\n"))
	assert.Equal(t, []string{"x", "", "y"}, SplitLines("x\n\ny"))
}
