package typeindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJDK(t *testing.T) {
	t.Parallel()

	k := JDK()
	for _, fqn := range []string{
		"java.lang.String",
		"java.lang.Object",
		"java.lang.Deprecated",
		"java.io.File",
		"java.nio.ByteBuffer",
		"java.util.ServiceLoader",
	} {
		assert.True(t, k.Has(fqn), fqn)
	}
	assert.False(t, k.Has("java.lang.File"))
	assert.False(t, k.Has("# Standard library types confirmed during default-package and"))
}

func TestKnownTypes_AddIndex(t *testing.T) {
	t.Parallel()

	k := NewKnownTypes("a.B")
	k.AddIndex(Index{"I": "ahoj.I"})
	k.Add("  ", "c.D ")

	assert.True(t, k.Has("a.B"))
	assert.True(t, k.Has("ahoj.I"))
	assert.True(t, k.Has("c.D"))
	assert.Equal(t, 3, k.Len())

	var nilSet *KnownTypes
	assert.False(t, nilSet.Has("a.B"))
	assert.Zero(t, nilSet.Len())
}

func TestReadManifest(t *testing.T) {
	t.Parallel()

	fqns, err := ReadManifest(strings.NewReader("# deps\n\nnet.java.html.js.JavaScriptBody\n  org.x.Y  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"net.java.html.js.JavaScriptBody", "org.x.Y"}, fqns)
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deps.txt")
	require.NoError(t, os.WriteFile(path, []byte("a.B\n"), 0o644))

	fqns, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.B"}, fqns)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
