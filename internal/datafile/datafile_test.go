package datafile

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

func TestFindProbesExtensionsInOrder(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.etch.yaml"), "x: 1\n")
	mustWrite(t, filepath.Join(root, "b.etch.json"), "{}")
	mustWrite(t, filepath.Join(root, "b.etch.yaml"), "x: 1\n")

	path, ok := Find(root, "a.etch")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "a.etch.yaml"), path)

	// JSON wins when both sidecars exist.
	path, ok = Find(root, "b.etch")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "b.etch.json"), path)

	_, ok = Find(root, "missing.etch")
	require.False(t, ok)
}

func TestFindNestedRelPath(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "mail", "welcome.etch.json"), `{"n": 1}`)

	path, ok := Find(root, filepath.Join("mail", "welcome.etch"))
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "mail", "welcome.etch.json"), path)
}

func TestLoadJSONNormalizesNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	mustWrite(t, path, `{"count": 3, "ratio": 0.5, "items": [1, 2.25], "big": 1e3}`)

	data, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(3), data["count"])
	require.Equal(t, 0.5, data["ratio"])
	require.Equal(t, []any{int64(1), 2.25}, data["items"])
	require.Equal(t, int64(1000), data["big"])
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.yaml")
	mustWrite(t, path, "name: Go\nitems:\n  - 1\n  - two\n")

	data, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Go", data["name"])
	require.Equal(t, []any{1, "two"}, data["items"])
}

func TestLoadRejectsNonObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.json")
	mustWrite(t, path, `[1, 2]`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "top-level object")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
