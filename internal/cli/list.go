package cli

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/babarot/saferm/internal/trash"
	"github.com/babarot/saferm/internal/utils/fs"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gabriel-vasile/mimetype"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	// maxOriginWidth is where long origin paths are cut in the table
	maxOriginWidth = 72

	// statWorkers bounds concurrent payload inspection while listing
	statWorkers = 8
)

// List prints the entries of the trash, newest first, hiding the ones
// excluded by the list section of the config.
func (c *CLI) List() error {
	slog.Debug("cli.list started")
	defer slog.Debug("cli.list finished")

	infos, err := c.catalog.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(c.stdout, "The trash is empty.")
		return nil
	}

	filtered := trash.NewFilter(c.config.List).Apply(infos)
	slog.Debug("filtered trash entries", "total", len(infos), "shown", len(filtered))
	if len(filtered) == 0 {
		fmt.Fprintln(c.stdout, "No entries match the list filters.")
		return nil
	}

	slices.SortStableFunc(filtered, func(a, b *trash.Info) int {
		return cmp.Compare(b.DeletedAt.Unix(), a.DeletedAt.Unix())
	})
	renderTable(c.stdout, filtered)
	return nil
}

func renderTable(w io.Writer, infos []*trash.Info) {
	id := color.New(color.FgHiYellow).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Deleted", "Size", "Type", "Origin"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(lo.Map(describePayloads(infos), func(row payloadRow, _ int) []string {
		return []string{
			id(row.info.Identity),
			humanize.Time(row.info.DeletedAt),
			row.size,
			row.kind,
			dim(ansi.Truncate(row.info.Origin, maxOriginWidth, "…")),
		}
	}))
	table.Render()
}

type payloadRow struct {
	info *trash.Info
	size string
	kind string
}

// describePayloads measures and sniffs the payloads. Only reads are
// involved so they are inspected concurrently; rows keep their order.
func describePayloads(infos []*trash.Info) []payloadRow {
	rows := make([]payloadRow, len(infos))
	var eg errgroup.Group
	eg.SetLimit(statWorkers)
	for i, info := range infos {
		eg.Go(func() error {
			rows[i] = payloadRow{
				info: info,
				size: payloadSize(info.TrashName),
				kind: payloadType(info.TrashName),
			}
			return nil
		})
	}
	_ = eg.Wait()
	return rows
}

func payloadSize(path string) string {
	size, err := fs.DirSize(path)
	if err != nil {
		return "-"
	}
	return humanize.Bytes(uint64(size))
}

func payloadType(path string) string {
	fi, err := os.Lstat(path)
	switch {
	case err != nil:
		return "missing"
	case fi.IsDir():
		return "directory"
	case fi.Mode()&os.ModeSymlink != 0:
		return "symlink"
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "-"
	}
	return mtype.String()
}
