package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/saferm/internal/trash"
	"github.com/babarot/saferm/internal/utils/fs"
)

// Put moves every argument into the trash, in the order given. A failing
// path does not stop the others; all failures are reported at the end.
func (c *CLI) Put(args []string) error {
	slog.Debug("cli.put started")
	defer slog.Debug("cli.put finished")

	if len(args) == 0 {
		return errTooFewArguments
	}

	targets, errs := c.resolvePaths(args)
	if len(targets) == 0 {
		return formatErrors(errs)
	}

	if c.option.Rm.Interactive && !c.assumeYes() {
		if !c.confirm(fmt.Sprintf("Move %s to the trash?", describe(targets))) {
			fmt.Fprintln(c.stderr, "Canceled.")
			return formatErrors(errs)
		}
	}

	for _, path := range targets {
		info, err := c.store.Put(path)
		switch {
		case errors.Is(err, trash.ErrOriginRemoval):
			slog.Warn("origin left in place", "path", path, "error", err)
			fmt.Fprintf(c.stderr, "warning: %v (kept in trash as %s)\n", err, info.Identity)
			continue
		case err != nil:
			slog.Error("failed to trash", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}

		slog.Info("trashed", "path", path, "identity", info.Identity)
		if c.verbose() {
			fmt.Fprintf(c.stdout, "trashed %s (%s)\n", shellescape.Quote(path), info.Identity)
		}
	}

	return formatErrors(errs)
}

// resolvePaths turns arguments into canonical absolute paths. Unsafe or
// missing paths are reported and left out; with -f missing paths are
// silently skipped.
func (c *CLI) resolvePaths(args []string) ([]string, []error) {
	var paths []string
	var errs []error
	for _, arg := range args {
		path, err := c.resolvePath(arg)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && c.option.Rm.Force {
				slog.Debug("skipping missing path", "path", arg)
				continue
			}
			errs = append(errs, err)
			continue
		}
		paths = append(paths, path)
	}
	return paths, errs
}

func (c *CLI) resolvePath(arg string) (string, error) {
	if why := fs.UnsafeReason(arg); why != "" {
		return "", fmt.Errorf("refusing to remove %s: %s", shellescape.Quote(arg), why)
	}
	if _, err := os.Lstat(arg); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: no such file or directory: %w", shellescape.Quote(arg), os.ErrNotExist)
		}
		return "", err
	}

	path, err := fs.Canonical(arg)
	if err != nil {
		return "", err
	}
	if c.layout.Overlaps(path) {
		return "", fmt.Errorf("refusing to remove %s: overlaps the trash at %s",
			shellescape.Quote(arg), shellescape.Quote(c.layout.Root))
	}
	return path, nil
}

func describe(paths []string) string {
	if len(paths) == 1 {
		return shellescape.Quote(paths[0])
	}
	return fmt.Sprintf("%d items", len(paths))
}
