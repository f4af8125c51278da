package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/saferm/internal/trash"
)

// Purge deletes the arguments permanently without keeping them in the
// trash. -p asks once for the whole batch unless core.purge.confirm is
// off or -y/-f is given; -P never asks.
func (c *CLI) Purge(args []string) error {
	slog.Debug("cli.purge started")
	defer slog.Debug("cli.purge finished")

	if len(args) == 0 {
		return errTooFewArguments
	}

	targets, errs := c.resolvePaths(args)
	if len(targets) == 0 {
		return formatErrors(errs)
	}

	policy := trash.PurgePolicy{
		Confirm: c.option.Purge && c.config.Core.Purge.Confirm && !c.assumeYes(),
	}
	purger := trash.NewPurger(trash.ConfirmFunc(func(string) bool {
		return c.confirm(fmt.Sprintf("Permanently delete %s? This cannot be undone.", describe(targets)))
	}))

	results, err := purger.Purge(targets, policy)
	if errors.Is(err, trash.ErrAborted) {
		fmt.Fprintln(c.stderr, "Purge canceled.")
		return formatErrors(errs)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		if c.verbose() {
			fmt.Fprintf(c.stdout, "removed %s\n", shellescape.Quote(r.Path))
		}
	}
	return formatErrors(errs)
}
