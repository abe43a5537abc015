package typeindex

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codesnippet/internal/log"
	"github.com/jward/codesnippet/internal/report"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type collector struct {
	got []report.Diagnostic
}

func (c *collector) Report(d report.Diagnostic) { c.got = append(c.got, d) }

func TestBuild_PackageAndFileName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "ahoj/I.java", "package ahoj;\npublic interface I {}\n")
	writeFile(t, root, "sec/Digest.java", "package org.apidesign.api.security;\n\npublic final class Digest {}\n")
	writeFile(t, root, "Readme.txt", "package nope;\n")

	ix, err := Build(context.Background(), []string{root}, Options{Logger: log.Discard()})
	require.NoError(t, err)

	assert.Equal(t, Index{
		"I":      "ahoj.I",
		"Digest": "org.apidesign.api.security.Digest",
	}, ix)
	assert.Equal(t, []string{"ahoj.I", "org.apidesign.api.security.Digest"}, ix.FQNs())
}

func TestBuild_SecondaryTopLevelTypes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "C.java", strings.Join([]string{
		"package org.apidesign.api.security;",
		"",
		"public class C {",
		"    class Inner {}",
		"}",
		"final class Digest {}",
		"interface Digestor {}",
		"enum Mode { ON, OFF }",
		"",
	}, "\n"))

	ix, err := Build(context.Background(), []string{root}, Options{Logger: log.Discard()})
	require.NoError(t, err)

	assert.Equal(t, "org.apidesign.api.security.C", ix["C"])
	assert.Equal(t, "org.apidesign.api.security.Digest", ix["Digest"])
	assert.Equal(t, "org.apidesign.api.security.Digestor", ix["Digestor"])
	assert.Equal(t, "org.apidesign.api.security.Mode", ix["Mode"])
	assert.NotContains(t, ix, "Inner")
}

func TestBuild_SkipSyntax(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "C.java", "package p;\nclass C {}\nclass D {}\n")

	ix, err := Build(context.Background(), []string{root}, Options{Logger: log.Discard(), SkipSyntax: true})
	require.NoError(t, err)
	assert.Equal(t, Index{"C": "p.C"}, ix)
}

func TestBuild_NoPackageNoEntry(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "Default.java", "class Default {}\n")

	ix, err := Build(context.Background(), []string{root}, Options{Logger: log.Discard()})
	require.NoError(t, err)
	assert.Empty(t, ix)
}

func TestBuild_LastWriteWins(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "I.java", "package one;\ninterface I {}\n")
	writeFile(t, second, "I.java", "package two;\ninterface I {}\n")

	ix, err := Build(context.Background(), []string{first, second}, Options{Logger: log.Discard()})
	require.NoError(t, err)
	assert.Equal(t, "two.I", ix["I"])
}

func TestBuild_NotADirectoryWarns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, root, "plain.txt", "x")
	writeFile(t, root, "src/I.java", "package ahoj;\ninterface I {}\n")

	c := &collector{}
	sink := report.NewSink(c, log.Discard())
	ix, err := Build(context.Background(), []string{file, filepath.Join(root, "src")}, Options{Sink: sink})
	require.NoError(t, err)

	require.Len(t, c.got, 1)
	assert.Equal(t, report.Warning, c.got[0].Severity)
	assert.Equal(t, report.Resource, c.got[0].Kind)
	assert.Contains(t, c.got[0].Message, "not a directory")
	assert.Equal(t, "ahoj.I", ix["I"])
}

func TestBuild_BinaryIsNotice(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "Bad.java", string([]byte{'p', 0xff, 0xfe}))

	c := &collector{}
	ix, err := Build(context.Background(), []string{root}, Options{Sink: report.NewSink(c, log.Discard())})
	require.NoError(t, err)
	assert.Empty(t, ix)
	require.Len(t, c.got, 1)
	assert.Equal(t, report.Notice, c.got[0].Severity)
	assert.Equal(t, report.Binary, c.got[0].Kind)
}

func TestBuild_Excludes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "gen/G.java", "package gen;\nclass G {}\n")
	writeFile(t, root, "src/S.java", "package src;\nclass S {}\n")

	ix, err := Build(context.Background(), []string{root}, Options{Logger: log.Discard(), Excludes: []string{"gen"}})
	require.NoError(t, err)
	assert.Equal(t, Index{"S": "src.S"}, ix)
}

func TestBuild_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, []string{t.TempDir()}, Options{Logger: log.Discard()})
	assert.ErrorIs(t, err, context.Canceled)
}
