package fswalk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustWrite(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(files []TemplateFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.ToSlash(f.RelPath))
	}
	return out
}

func TestDiscoverDefaultGlob(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.etch"), "x")
	mustWrite(t, filepath.Join(root, "sub", "b.etch"), "x")
	mustWrite(t, filepath.Join(root, "sub", "notes.txt"), "x")

	files, err := Discover(root, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a.etch", "sub/b.etch"}, relPaths(files))
	require.Equal(t, filepath.Join(root, "a.etch"), files[0].AbsPath)
}

func TestDiscoverCustomGlob(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.tpl"), "x")
	mustWrite(t, filepath.Join(root, "deep", "deeper", "b.tpl"), "x")
	mustWrite(t, filepath.Join(root, "deep", "c.etch"), "x")

	files, err := Discover(root, "**/*.tpl")
	require.NoError(t, err)
	require.Equal(t, []string{"a.tpl", "deep/deeper/b.tpl"}, relPaths(files))
}

func TestDiscoverInvalidGlob(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.etch"), "x")

	_, err := Discover(root, "[")
	require.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, filepath.Join("out", "a.txt"), OutputPath("out", "a.etch", ".txt"))
	require.Equal(t, filepath.Join("out", "sub", "b.html"), OutputPath("out", filepath.Join("sub", "b.etch"), ".html"))
	require.Equal(t, filepath.Join("out", "a.etch"), OutputPath("out", "a.etch", ""))
}

func TestEnsureParentDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "deep", "file.txt")
	require.NoError(t, EnsureParentDir(target))

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
