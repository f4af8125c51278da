package trash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayoutRequiresAbsolutePath(t *testing.T) {
	_, err := NewLayout("relative/trash")
	assert.ErrorIs(t, err, ErrInitialization)
}

func TestEnsureInitialized(t *testing.T) {
	tests := []struct {
		name    string
		root    string
		prepare func(t *testing.T, layout Layout)
		keep    string
		wantErr bool
	}{
		{name: "fresh", root: "trash"},
		{name: "missing parents", root: filepath.Join("share", "saferm", "trash")},
		{
			name: "initialized root keeps content",
			root: "trash",
			prepare: func(t *testing.T, layout Layout) {
				require.NoError(t, layout.EnsureInitialized())
				writeFile(t, layout.PayloadPath("abc_1"), "x")
			},
			keep: "abc_1",
		},
		{
			name: "root is a file",
			root: "trash",
			prepare: func(t *testing.T, layout Layout) {
				writeFile(t, layout.Root, "not a directory")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := NewLayout(filepath.Join(t.TempDir(), tt.root))
			require.NoError(t, err)
			if tt.prepare != nil {
				tt.prepare(t, layout)
			}

			// a second call must be a no-op
			for i := 0; i < 2; i++ {
				err := layout.EnsureInitialized()
				if tt.wantErr {
					assert.ErrorIs(t, err, ErrInitialization)
					return
				}
				require.NoError(t, err)

				for _, dir := range []string{layout.Root, layout.Files, layout.Info} {
					fi, err := os.Stat(dir)
					require.NoError(t, err)
					assert.True(t, fi.IsDir())
					assert.Equal(t, os.FileMode(0771), fi.Mode().Perm(), dir)
				}
			}
			if tt.keep != "" {
				assert.FileExists(t, layout.PayloadPath(tt.keep))
			}
		})
	}
}

func TestLayoutContains(t *testing.T) {
	layout, err := NewLayout("/home/u/.saferm")
	require.NoError(t, err)

	tests := []struct {
		path     string
		contains bool
		overlaps bool
	}{
		{"/home/u/.saferm", true, true},
		{"/home/u/.saferm/files/x", true, true},
		{"/home/u/.saferm2", false, false},
		{"/home/u", false, true},
		{"/", false, true},
		{"/home/other", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.contains, layout.Contains(tt.path))
			assert.Equal(t, tt.overlaps, layout.Overlaps(tt.path))
		})
	}
}

func TestLayoutThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link")))

	layout, err := NewLayout(filepath.Join(dir, "link", "trash"))
	require.NoError(t, err)
	require.NoError(t, layout.EnsureInitialized())

	realTrash, err := filepath.EvalSymlinks(filepath.Join(target, "trash"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		contains bool
		overlaps bool
	}{
		{"real root", realTrash, true, true},
		{"real record", filepath.Join(realTrash, "info", "abc_1"), true, true},
		{"linked payload", filepath.Join(dir, "link", "trash", "files", "abc_1"), true, true},
		{"real parent", filepath.Dir(realTrash), false, true},
		{"sibling", filepath.Join(filepath.Dir(realTrash), "other"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.contains, layout.Contains(tt.path))
			assert.Equal(t, tt.overlaps, layout.Overlaps(tt.path))
		})
	}

	resolved, err := layout.Resolve()
	require.NoError(t, err)
	assert.Equal(t, realTrash, resolved.Root)
	assert.Equal(t, filepath.Join(realTrash, "info"), resolved.Info)
}

func TestValidIdentity(t *testing.T) {
	tests := map[string]bool{
		"5d41402abc4b2a76b9719d911017c592_1700000000":   true,
		"5d41402abc4b2a76b9719d911017c592_1700000000_1": true,
		"":         false,
		".":        false,
		"..":       false,
		".x.tmp":   false,
		"../info":  false,
		`a\b`:      false,
		"a/b":      false,
	}
	for id, want := range tests {
		assert.Equal(t, want, validIdentity(id), id)
	}
}
