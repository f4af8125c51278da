package trash

import (
	"log/slog"
	"regexp"
	"slices"
	"time"

	"github.com/babarot/saferm/internal/config"
	"github.com/babarot/saferm/internal/utils/fs"
	"github.com/docker/go-units"
	"github.com/gobwas/glob"
	"github.com/k1LoW/duration"
)

// Filter hides entries from listings according to the list section of
// the config. It never touches the trash itself.
type Filter struct {
	opts config.List
	now  func() time.Time
	size func(path string) (int64, error)
}

// NewFilter returns a Filter for opts; sizes are measured on the payload
func NewFilter(opts config.List) *Filter {
	return &Filter{
		opts: opts,
		now:  time.Now,
		size: fs.DirSize,
	}
}

// Apply returns the entries that pass every rule, in their original order
func (f *Filter) Apply(items []*Info) []*Info {
	items = rejectByNames(items, f.opts.Exclude.Files)
	items = rejectByPatterns(items, f.opts.Exclude.Patterns)
	items = rejectByGlobs(items, f.opts.Exclude.Globs)
	items = rejectBySize(items, f.opts.Exclude.Size, f.size)
	items = filterByPeriod(items, f.opts.Within, f.now())
	return items
}

func rejectByNames(items []*Info, names []string) []*Info {
	if len(names) == 0 {
		return items
	}
	return slices.DeleteFunc(slices.Clone(items), func(item *Info) bool {
		return slices.Contains(names, item.Name())
	})
}

func rejectByPatterns(items []*Info, patterns []string) []*Info {
	if len(patterns) == 0 {
		return items
	}

	var res []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			slog.Warn("ignoring invalid exclude pattern", "pattern", pattern, "error", err)
			continue
		}
		res = append(res, re)
	}

	return slices.DeleteFunc(slices.Clone(items), func(item *Info) bool {
		return slices.ContainsFunc(res, func(re *regexp.Regexp) bool {
			return re.MatchString(item.Name())
		})
	})
}

func rejectByGlobs(items []*Info, globs []string) []*Info {
	if len(globs) == 0 {
		return items
	}

	var gs []glob.Glob
	for _, pattern := range globs {
		g, err := glob.Compile(pattern)
		if err != nil {
			slog.Warn("ignoring invalid exclude glob", "glob", pattern, "error", err)
			continue
		}
		gs = append(gs, g)
	}

	return slices.DeleteFunc(slices.Clone(items), func(item *Info) bool {
		return slices.ContainsFunc(gs, func(g glob.Glob) bool {
			return g.Match(item.Name())
		})
	})
}

// rejectBySize keeps entries whose payload is larger than min and smaller
// than max. Entries that cannot be measured are kept.
func rejectBySize(items []*Info, size config.SizeConfig, sizeOf func(string) (int64, error)) []*Info {
	if size.Min == "" && size.Max == "" {
		return items
	}

	var minSize, maxSize int64 = -1, -1
	if size.Min != "" {
		if v, err := units.FromHumanSize(size.Min); err == nil {
			minSize = v
		}
	}
	if size.Max != "" {
		if v, err := units.FromHumanSize(size.Max); err == nil {
			maxSize = v
		}
	}

	return slices.DeleteFunc(slices.Clone(items), func(item *Info) bool {
		n, err := sizeOf(item.TrashName)
		if err != nil {
			slog.Debug("cannot measure payload", "path", item.TrashName, "error", err)
			return false
		}
		if minSize >= 0 && n <= minSize {
			return true
		}
		if maxSize >= 0 && n >= maxSize {
			return true
		}
		return false
	})
}

// filterByPeriod keeps entries deleted within the given period, e.g. "7 days"
func filterByPeriod(items []*Info, within string, now time.Time) []*Info {
	if within == "" {
		return items
	}

	d, err := duration.Parse(within)
	if err != nil {
		slog.Error("failed to parse duration", "within", within, "error", err)
		return items
	}

	return slices.DeleteFunc(slices.Clone(items), func(item *Info) bool {
		return now.Sub(item.DeletedAt) >= d
	})
}
