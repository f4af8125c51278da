package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/saferm/internal/trash"
)

// Restore moves the entries named by ids back to where they came from.
// With --to they go there instead: into it when it is an existing
// directory, otherwise to exactly that path (single id only).
func (c *CLI) Restore(ids []string) error {
	slog.Debug("cli.restore started")
	defer slog.Debug("cli.restore finished")

	if len(ids) == 0 {
		return errors.New("no trash ID given: run with -l to list entries")
	}

	into, err := c.restoreTarget(len(ids))
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range ids {
		dst := c.option.To
		if into {
			info, err := c.catalog.Get(id)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			dst = filepath.Join(c.option.To, info.Name())
		}

		info, err := c.catalog.Restore(id, dst)
		if err != nil {
			if errors.Is(err, trash.ErrRestoreConflict) {
				err = fmt.Errorf("%w (use --to to restore elsewhere)", err)
			}
			slog.Error("failed to restore", "identity", id, "error", err)
			errs = append(errs, err)
			continue
		}

		if dst == "" {
			dst = info.Origin
		}
		slog.Info("restored", "identity", id, "path", dst)
		if c.config.Core.Restore.Verbose || c.option.Rm.Verbose {
			fmt.Fprintf(c.stdout, "restored %s to %s\n", id, shellescape.Quote(dst))
		}
	}

	return formatErrors(errs)
}

// restoreTarget validates --to and reports whether entries go into it
func (c *CLI) restoreTarget(n int) (bool, error) {
	if c.option.To == "" {
		return false, nil
	}

	to, err := filepath.Abs(c.option.To)
	if err != nil {
		return false, err
	}
	c.option.To = to

	if fi, err := os.Stat(to); err == nil && fi.IsDir() {
		return true, nil
	}
	if n > 1 {
		return false, fmt.Errorf("--to %s must be an existing directory when restoring %d entries",
			shellescape.Quote(to), n)
	}
	return false, nil
}
