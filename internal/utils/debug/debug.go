package debug

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/babarot/saferm/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/nxadm/tail"
)

// Mode selects what --debug prints
type Mode string

const (
	// Full prints the rotated backups oldest first, then the current log
	Full Mode = "full"
	// Live prints only new entries, following the file on a terminal
	Live Mode = "live"
)

// Logs writes the debug log at path to w according to mode
func Logs(w io.Writer, cfg config.LoggingConfig, path string, mode Mode) error {
	if mode == Live && !cfg.Enabled {
		return errors.New("logging is not enabled: set core.logging.enabled to follow the log")
	}
	if _, err := os.Stat(path); errors.Is(err, iofs.ErrNotExist) {
		if !cfg.Enabled {
			return errors.New("logging is not enabled: set core.logging.enabled to write a log")
		}
		return errors.New("no log file yet: run saferm with logging enabled first")
	}

	switch mode {
	case Live:
		follow := isatty.IsTerminal(os.Stdout.Fd())
		return stream(w, path, follow, &tail.SeekInfo{Whence: io.SeekEnd})
	case Full, "":
		for _, p := range append(backups(path), path) {
			if err := stream(w, p, false, nil); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown debug mode %q", mode)
	}
}

// backups lists path.N files, highest N (oldest) first
func backups(path string) []string {
	matches, _ := filepath.Glob(path + ".*")
	seq := func(p string) int {
		n, err := strconv.Atoi(strings.TrimPrefix(p, path+"."))
		if err != nil {
			return -1
		}
		return n
	}
	matches = slices.DeleteFunc(matches, func(p string) bool { return seq(p) < 1 })
	slices.SortFunc(matches, func(a, b string) int { return seq(b) - seq(a) })
	return matches
}

func stream(w io.Writer, path string, follow bool, from *tail.SeekInfo) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:   follow,
		ReOpen:   follow,
		Poll:     true,
		Location: from,
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	for line := range t.Lines {
		if line.Err != nil {
			return line.Err
		}
		fmt.Fprintln(w, line.Text)
	}
	return nil
}
