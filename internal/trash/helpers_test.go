package trash

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type failingRemover struct{ err error }

func (r failingRemover) RemoveAll(string) error { return r.err }

// newTestLayout returns an initialized trash root inside a temp dir
func newTestLayout(t *testing.T) Layout {
	t.Helper()
	layout, err := NewLayout(filepath.Join(t.TempDir(), "trash"))
	require.NoError(t, err)
	require.NoError(t, layout.EnsureInitialized())
	return layout
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
