package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/babarot/saferm/internal/trash"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/k1LoW/duration"
	"github.com/samber/lo"
)

// Prune removes the halves of broken entries: records whose payload is
// gone, payloads nobody refers to and leftovers of interrupted copies.
func (c *CLI) Prune() error {
	slog.Debug("cli.prune started")
	defer slog.Debug("cli.prune finished")

	orphans, err := c.catalog.Orphans()
	if err != nil {
		return err
	}
	if len(orphans) == 0 {
		fmt.Fprintln(c.stdout, "No orphaned entries found.")
		return nil
	}

	printOrphansTable(c.stdout, orphans)

	if !c.assumeYes() {
		if !c.confirm(fmt.Sprintf("Are you sure you want to remove %d orphaned entries?", len(orphans))) {
			fmt.Fprintln(c.stderr, "Pruning canceled.")
			return nil
		}
	}

	var errs []error
	for _, o := range orphans {
		if err := c.catalog.RemoveOrphan(o); err != nil {
			slog.Error("failed to remove orphan", "path", o.Path, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return formatErrors(errs)
	}

	fmt.Fprintf(c.stdout, "Successfully removed %d orphaned entries.\n", len(orphans))
	return nil
}

// printOrphansTable prints a formatted table of orphaned entries
func printOrphansTable(w io.Writer, orphans []trash.Orphan) {
	green := color.New(color.FgHiGreen).SprintfFunc()
	white := color.New(color.FgWhite).SprintfFunc()

	fmt.Fprintf(w, "%s %s %s %s\n",
		green("%-9s", "Kind"),
		green("%-20s", "Deleted At"),
		green("%-10s", "Size"),
		green("%-30s", "Path"),
	)

	for _, o := range orphans {
		deletedAt := "-"
		if o.Info != nil {
			deletedAt = o.Info.DeletedAt.Format("2006-01-02 15:04:05")
		}
		size := "-"
		if fi, err := os.Lstat(o.Path); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}

		fmt.Fprintf(w, "%s %s %s %s\n",
			white("%-9s", o.Kind),
			white("%-20s", deletedAt),
			white("%-10s", size),
			white("%-30s", o.Path),
		)
	}
	fmt.Fprintln(w)
}

// Empty permanently deletes every entry of the trash, or with
// --older-than only those trashed long enough ago. The user has to type
// YES unless -y or -f is given.
func (c *CLI) Empty() error {
	slog.Debug("cli.empty started")
	defer slog.Debug("cli.empty finished")

	infos, err := c.catalog.List()
	if err != nil {
		return err
	}

	scope := "all"
	if c.option.Older != "" {
		d, err := duration.Parse(c.option.Older)
		if err != nil {
			return fmt.Errorf("invalid --older-than %q: %w", c.option.Older, err)
		}
		now := time.Now()
		infos = lo.Filter(infos, func(info *trash.Info, _ int) bool {
			return now.Sub(info.DeletedAt) >= d
		})
		scope = "the"
	}

	if len(infos) == 0 {
		fmt.Fprintln(c.stdout, "Nothing to remove from the trash.")
		return nil
	}

	if !c.assumeYes() {
		prompt := fmt.Sprintf("Permanently delete %s %d entries in %s?", scope, len(infos), c.layout.Root)
		if !c.confirmYes(prompt) {
			fmt.Fprintln(c.stderr, "Canceled.")
			return nil
		}
	}

	var errs []error
	for _, info := range infos {
		if err := c.catalog.Remove(info.Identity); err != nil {
			slog.Error("failed to remove entry", "identity", info.Identity, "error", err)
			errs = append(errs, err)
			continue
		}
		if c.verbose() {
			fmt.Fprintf(c.stdout, "removed %s\n", info.Identity)
		}
	}
	if len(errs) > 0 {
		return formatErrors(errs)
	}

	fmt.Fprintf(c.stdout, "Removed %d entries from the trash.\n", len(infos))
	return nil
}
