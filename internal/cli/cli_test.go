package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/babarot/saferm/internal/config"
	"github.com/babarot/saferm/internal/trash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	*CLI
	out    *bytes.Buffer
	errOut *bytes.Buffer
	asked  []string
}

// newTestCLI returns a CLI on a fresh trash root whose prompts answer with
// answer and record what was asked
func newTestCLI(t *testing.T, opt Option, answer bool) *testCLI {
	t.Helper()
	cfg := config.Default()
	cfg.Core.TrashDir = filepath.Join(t.TempDir(), "trash")

	c, err := New(Version{AppName: "saferm"}, opt, cfg)
	require.NoError(t, err)

	tc := &testCLI{CLI: c, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	c.stdout = tc.out
	c.stderr = tc.errOut
	c.confirm = func(prompt string) bool {
		tc.asked = append(tc.asked, prompt)
		return answer
	}
	c.confirmYes = c.confirm
	return tc
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func entries(t *testing.T, dir string) int {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(list)
}

func TestRunRejectsConflictingModes(t *testing.T) {
	c := newTestCLI(t, Option{List: true, Purge: true}, true)
	assert.ErrorIs(t, c.Run(nil), errConflictingModes)

	c = newTestCLI(t, Option{To: "/tmp/x"}, true)
	assert.Error(t, c.Run([]string{"a"}))
}

func TestPut(t *testing.T) {
	tests := []struct {
		name        string
		opt         Option
		answer      bool
		// args creates the files under dir and returns the arguments
		args        func(t *testing.T, c *testCLI, dir string) []string
		wantErr     error
		wantErrText string
		// trashed is the number of entries expected in the trash
		trashed     int
		asked       int
	}{
		{
			name: "two files",
			opt:  Option{Rm: RmOption{Verbose: true}},
			args: func(t *testing.T, c *testCLI, dir string) []string {
				return []string{writeFile(t, filepath.Join(dir, "a.txt"), "a"), writeFile(t, filepath.Join(dir, "b.txt"), "b")}
			},
			trashed: 2,
		},
		{
			name:    "no arguments",
			args:    func(t *testing.T, c *testCLI, dir string) []string { return nil },
			wantErr: errTooFewArguments,
		},
		{
			name: "continues past failures",
			args: func(t *testing.T, c *testCLI, dir string) []string {
				return []string{
					writeFile(t, filepath.Join(dir, "a.txt"), "a"),
					filepath.Join(dir, "missing.txt"),
					writeFile(t, filepath.Join(dir, "c.txt"), "c"),
				}
			},
			wantErrText: "missing.txt",
			trashed:     2,
		},
		{
			name: "force ignores missing",
			opt:  Option{Rm: RmOption{Force: true}},
			args: func(t *testing.T, c *testCLI, dir string) []string {
				return []string{filepath.Join(dir, "missing")}
			},
		},
		{
			name: "interactive declined",
			opt:  Option{Rm: RmOption{Interactive: true}},
			args: func(t *testing.T, c *testCLI, dir string) []string {
				return []string{writeFile(t, filepath.Join(dir, "a.txt"), "a")}
			},
			asked: 1,
		},
		{
			name:   "interactive accepted",
			opt:    Option{Rm: RmOption{Interactive: true}},
			answer: true,
			args: func(t *testing.T, c *testCLI, dir string) []string {
				return []string{writeFile(t, filepath.Join(dir, "a.txt"), "a")}
			},
			trashed: 1,
			asked:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCLI(t, tt.opt, tt.answer)
			args := tt.args(t, c, t.TempDir())

			err := c.Run(args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
			default:
				require.NoError(t, err)
			}

			assert.Equal(t, tt.trashed, entries(t, c.layout.Files))
			assert.Equal(t, tt.trashed, entries(t, c.layout.Info))
			assert.Len(t, c.asked, tt.asked)
			if tt.opt.Rm.Verbose {
				assert.Contains(t, c.out.String(), "trashed "+args[0])
			}
		})
	}
}

func TestPutRefusesUnsafePaths(t *testing.T) {
	c := newTestCLI(t, Option{}, true)

	for _, arg := range []string{".", "..", "/", "", c.layout.Root, c.layout.Info, filepath.Dir(c.layout.Root)} {
		t.Run(arg, func(t *testing.T) {
			assert.Error(t, c.Run([]string{arg}))
		})
	}
	assert.DirExists(t, c.layout.Info)
	assert.Equal(t, 0, entries(t, c.layout.Files))
}

func TestPutRefusesTrashBehindSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link")))

	cfg := config.Default()
	cfg.Core.TrashDir = filepath.Join(dir, "link", "share", "trash")
	c, err := New(Version{AppName: "saferm"}, Option{}, cfg)
	require.NoError(t, err)
	c.stdout, c.stderr = &bytes.Buffer{}, &bytes.Buffer{}

	info, err := c.store.Put(writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "a"))
	require.NoError(t, err)

	realTrash, err := filepath.EvalSymlinks(filepath.Join(target, "share", "trash"))
	require.NoError(t, err)
	assert.Equal(t, realTrash, c.layout.Root)

	for _, arg := range []string{
		filepath.Join(realTrash, "info", info.Identity),
		filepath.Join(dir, "link", "share", "trash", "files", info.Identity),
		filepath.Join(target, "share"),
		dir,
	} {
		t.Run(filepath.Base(arg), func(t *testing.T) {
			err := c.Run([]string{arg})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "overlaps the trash")
		})
	}
	assert.Equal(t, 1, entries(t, c.layout.Files))
	assert.Equal(t, 1, entries(t, c.layout.Info))
}

func TestPurge(t *testing.T) {
	tests := []struct {
		name      string
		opt       Option
		answer    bool
		wantAsked bool
		wantGone  bool
	}{
		{name: "confirmed", opt: Option{Purge: true}, answer: true, wantAsked: true, wantGone: true},
		{name: "declined", opt: Option{Purge: true}, answer: false, wantAsked: true, wantGone: false},
		{name: "yes flag", opt: Option{Purge: true, Yes: true}, wantGone: true},
		{name: "force flag", opt: Option{Purge: true, Rm: RmOption{Force: true}}, wantGone: true},
		{name: "without confirmation", opt: Option{PurgeNo: true}, wantGone: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCLI(t, tt.opt, tt.answer)
			dir := t.TempDir()
			a := writeFile(t, filepath.Join(dir, "a.txt"), "a")
			tree := filepath.Join(dir, "tree")
			writeFile(t, filepath.Join(tree, "b.txt"), "b")

			require.NoError(t, c.Run([]string{a, tree}))

			assert.Equal(t, tt.wantAsked, len(c.asked) == 1)
			if tt.wantGone {
				assert.NoFileExists(t, a)
				assert.NoDirExists(t, tree)
			} else {
				assert.FileExists(t, a)
				assert.DirExists(t, tree)
			}
			assert.Equal(t, 0, entries(t, c.layout.Info), "purge never creates trash records")
		})
	}
}

func TestPurgeConfigDisablesConfirmation(t *testing.T) {
	c := newTestCLI(t, Option{Purge: true}, false)
	c.config.Core.Purge.Confirm = false
	a := writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "a")

	require.NoError(t, c.Run([]string{a}))
	assert.Empty(t, c.asked)
	assert.NoFileExists(t, a)
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name        string
		// setup runs after a.txt and b.txt were trashed and returns the
		// options, the IDs to restore and the expected files afterwards
		setup       func(t *testing.T, infos []*trash.Info) (Option, []string, map[string]string)
		wantErr     error
		wantErrText string
		wantOut     string
	}{
		{
			name: "origin",
			setup: func(t *testing.T, infos []*trash.Info) (Option, []string, map[string]string) {
				opt := Option{Restore: true, Rm: RmOption{Verbose: true}}
				return opt, []string{infos[0].Identity}, map[string]string{infos[0].Origin: "a"}
			},
			wantOut: "restored ",
		},
		{
			name: "conflict suggests --to",
			setup: func(t *testing.T, infos []*trash.Info) (Option, []string, map[string]string) {
				writeFile(t, infos[0].Origin, "new")
				return Option{Restore: true}, []string{infos[0].Identity}, map[string]string{infos[0].Origin: "new"}
			},
			wantErr:     trash.ErrRestoreConflict,
			wantErrText: "--to",
		},
		{
			name: "conflict resolved with --to",
			setup: func(t *testing.T, infos []*trash.Info) (Option, []string, map[string]string) {
				writeFile(t, infos[0].Origin, "new")
				dst := filepath.Join(t.TempDir(), "a.old.txt")
				return Option{Restore: true, To: dst}, []string{infos[0].Identity}, map[string]string{
					infos[0].Origin: "new",
					dst:             "a",
				}
			},
		},
		{
			name: "into directory",
			setup: func(t *testing.T, infos []*trash.Info) (Option, []string, map[string]string) {
				into := t.TempDir()
				return Option{Restore: true, To: into}, []string{infos[0].Identity, infos[1].Identity}, map[string]string{
					filepath.Join(into, "a.txt"): "a",
					filepath.Join(into, "b.txt"): "b",
				}
			},
		},
		{
			name: "--to file with many IDs",
			setup: func(t *testing.T, infos []*trash.Info) (Option, []string, map[string]string) {
				opt := Option{Restore: true, To: filepath.Join(t.TempDir(), "not-a-dir")}
				return opt, []string{infos[0].Identity, infos[1].Identity}, nil
			},
			wantErrText: "--to",
		},
		{
			name: "unknown ID",
			setup: func(t *testing.T, infos []*trash.Info) (Option, []string, map[string]string) {
				return Option{Restore: true}, []string{"nope_1"}, nil
			},
			wantErr: trash.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCLI(t, Option{}, true)
			dir := t.TempDir()
			var infos []*trash.Info
			for _, name := range []string{"a", "b"} {
				info, err := c.store.Put(writeFile(t, filepath.Join(dir, name+".txt"), name))
				require.NoError(t, err)
				infos = append(infos, info)
			}

			opt, ids, want := tt.setup(t, infos)
			c.option = opt
			err := c.Run(ids)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantErrText != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
			}
			if tt.wantErr == nil && tt.wantErrText == "" {
				require.NoError(t, err)
			}

			for path, content := range want {
				got, err := os.ReadFile(path)
				require.NoError(t, err, path)
				assert.Equal(t, content, string(got), path)
			}
			if tt.wantOut != "" {
				assert.Contains(t, c.out.String(), tt.wantOut+ids[0])
			}
		})
	}
}

func TestList(t *testing.T) {
	c := newTestCLI(t, Option{List: true}, true)
	require.NoError(t, c.Run(nil))
	assert.Contains(t, c.out.String(), "empty")

	info, err := c.store.Put(writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "hello"))
	require.NoError(t, err)

	c.out.Reset()
	require.NoError(t, c.Run(nil))
	assert.Contains(t, c.out.String(), info.Identity)
	assert.Contains(t, c.out.String(), "a.txt")
	assert.Contains(t, c.out.String(), "text/plain")
}

func TestListFiltered(t *testing.T) {
	c := newTestCLI(t, Option{List: true}, true)
	c.config.List.Exclude.Globs = []string{"*.log"}
	_, err := c.store.Put(writeFile(t, filepath.Join(t.TempDir(), "app.log"), "log"))
	require.NoError(t, err)

	require.NoError(t, c.Run(nil))
	assert.Contains(t, c.out.String(), "No entries match")
}

func TestPrune(t *testing.T) {
	c := newTestCLI(t, Option{Prune: true}, true)
	info, err := c.store.Put(writeFile(t, filepath.Join(t.TempDir(), "a.txt"), "a"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(c.layout.PayloadPath(info.Identity)))

	require.NoError(t, c.Run(nil))
	assert.Len(t, c.asked, 1)
	assert.Equal(t, 0, entries(t, c.layout.Info))
	assert.Contains(t, c.out.String(), "Successfully removed 1")
}

func TestPruneDeclined(t *testing.T) {
	c := newTestCLI(t, Option{Prune: true}, false)
	writeFile(t, c.layout.PayloadPath("stray_1"), "x")

	require.NoError(t, c.Run(nil))
	assert.FileExists(t, c.layout.PayloadPath("stray_1"))
}

func TestEmpty(t *testing.T) {
	for _, answer := range []bool{false, true} {
		c := newTestCLI(t, Option{Empty: true}, answer)
		dir := t.TempDir()
		for _, name := range []string{"a", "b"} {
			_, err := c.store.Put(writeFile(t, filepath.Join(dir, name), name))
			require.NoError(t, err)
		}

		require.NoError(t, c.Run(nil))
		want := 2
		if answer {
			want = 0
		}
		assert.Equal(t, want, entries(t, c.layout.Files))
		assert.Equal(t, want, entries(t, c.layout.Info))
	}
}

func TestEmptyOlderThan(t *testing.T) {
	c := newTestCLI(t, Option{Empty: true, Older: "1 day"}, true)
	old := trash.NewStore(c.layout, trash.WithClock(fixedClock{time.Now().Add(-48 * time.Hour)}))
	dir := t.TempDir()

	stale, err := old.Put(writeFile(t, filepath.Join(dir, "stale"), "stale"))
	require.NoError(t, err)
	fresh, err := c.store.Put(writeFile(t, filepath.Join(dir, "fresh"), "fresh"))
	require.NoError(t, err)

	require.NoError(t, c.Run(nil))
	assert.NoFileExists(t, c.layout.InfoPath(stale.Identity))
	assert.FileExists(t, c.layout.InfoPath(fresh.Identity))

	c = newTestCLI(t, Option{Empty: true, Older: "soon"}, true)
	assert.Error(t, c.Run(nil))

	c = newTestCLI(t, Option{Older: "1 day"}, true)
	assert.Error(t, c.Run([]string{"x"}))
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestFormatErrors(t *testing.T) {
	assert.NoError(t, formatErrors(nil))

	one := errors.New("one")
	assert.Equal(t, one, formatErrors([]error{one}))

	two := errors.New("two")
	err := formatErrors([]error{one, two})
	assert.Equal(t, "2 errors occurred:\n  * one\n  * two\n", err.Error())
	assert.ErrorIs(t, err, two)
}

func TestVersionString(t *testing.T) {
	v := Version{AppName: "saferm", Version: "v1.2.3", Revision: "abc1234", BuildDate: "2026-10-18"}
	out := v.String()
	assert.Contains(t, out, "saferm v1.2.3 (abc1234, built 2026-10-18")
	assert.Contains(t, out, appURL)

	dev := Version{AppName: "saferm", Version: "unset"}.String()
	assert.NotContains(t, dev, "unset")
}
