package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/babarot/saferm/internal/config"
	"github.com/babarot/saferm/internal/env"
	"github.com/babarot/saferm/internal/trash"
	"github.com/babarot/saferm/internal/ui"
	"github.com/babarot/saferm/internal/utils/debug"
	"github.com/babarot/saferm/internal/utils/log"
	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"github.com/rs/xid"
)

type Option struct {
	Restore bool   `short:"b" long:"restore" description:"Restore the trashed entries given by ID"`
	To      string `long:"to" value-name:"PATH" description:"Restore to PATH instead of the original location"`
	List    bool   `short:"l" long:"list" description:"List trashed entries"`
	Purge   bool   `short:"p" long:"purge" description:"Delete permanently, after confirmation"`
	PurgeNo bool   `short:"P" description:"Delete permanently, without confirmation"`
	Prune   bool   `long:"prune" description:"Find and remove orphaned entries from the trash"`
	Empty   bool   `long:"empty" description:"Delete every entry in the trash permanently"`
	Older   string `long:"older-than" value-name:"PERIOD" description:"With --empty, only entries trashed more than PERIOD ago (e.g. \"30 days\")"`
	Yes     bool   `short:"y" long:"yes" description:"Assume yes to every prompt"`
	Config  string `long:"config" description:"Path to config file" default:""`

	Meta MetaOption `group:"Meta Options"`
	Rm   RmOption   `group:"Compatible (rm) Options"`
}

type MetaOption struct {
	Version bool   `short:"V" long:"version" description:"Show version"`
	Debug   string `long:"debug" description:"View debug logs (default: \"full\")" optional-value:"full" optional:"yes" choice:"full" choice:"live"`
}

// RmOption provides compatibility with rm command options
type RmOption struct {
	Interactive bool `short:"i" description:"prompt once before trashing"`
	Recursive   bool `short:"r" long:"recursive" description:"(dummy) directories are always trashed recursively"`
	Recursive2  bool `short:"R" description:"(dummy) same as -r"`
	Force       bool `short:"f" long:"force" description:"ignore nonexistent files, never prompt"`
	Directory   bool `short:"d" long:"dir" description:"(dummy) remove empty directories"`
	Verbose     bool `short:"v" long:"verbose" description:"explain what is being done"`
}

type CLI struct {
	version Version
	option  Option
	config  config.Config
	runID   string

	layout  trash.Layout
	store   *trash.Store
	catalog *trash.Catalog

	stdout io.Writer
	stderr io.Writer

	confirm    func(prompt string) bool
	confirmYes func(prompt string) bool
}

// runID tags every log record of one invocation
var runID = sync.OnceValue(func() string { return xid.New().String() })

var errConflictingModes = errors.New("only one of -b, -l, -p, -P, --prune and --empty may be given")

func Run(v Version) error {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	parser.Name = v.AppName
	parser.Usage = "[OPTIONS] files... | -b ID... [--to PATH] | -l | -p files... | --prune | --empty [--older-than PERIOD]"
	args, err := parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	if opt.Meta.Version {
		fmt.Fprint(os.Stdout, v)
		return nil
	}

	cfg, err := config.Parse(opt.Config)
	if err != nil {
		return err
	}

	closeLog := setupLogger(cfg.Core.Logging)
	defer closeLog()
	if opt.Rm.Verbose {
		log.SetLevel(log.DebugLevel, nil)
	}

	defer slog.Debug("main function finished")
	slog.Debug("main function started", "version", v.Version, "revision", v.Revision, "buildDate", v.BuildDate)
	slog.Debug("loaded config", "config", dump(cfg))

	if opt.Meta.Debug != "" {
		return debug.Logs(os.Stdout, cfg.Core.Logging, env.SAFERM_LOG_PATH, debug.Mode(opt.Meta.Debug))
	}

	c, err := New(v, opt, cfg)
	if err != nil {
		return err
	}

	if err := c.Run(args); err != nil {
		slog.Error("exit", "error", fmt.Errorf("cli.run failed: %w", err))
		return err
	}
	return nil
}

// New prepares the trash root named in cfg and returns a CLI writing to
// the standard streams.
func New(v Version, opt Option, cfg config.Config) (*CLI, error) {
	root := cfg.Core.TrashDir
	if root == "" {
		root = env.DefaultTrashDir()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	layout, err := trash.NewLayout(root)
	if err != nil {
		return nil, err
	}
	if err := layout.EnsureInitialized(); err != nil {
		return nil, err
	}
	// compare against the real location when checking arguments
	if layout, err = layout.Resolve(); err != nil {
		return nil, err
	}

	return &CLI{
		version:    v,
		option:     opt,
		config:     cfg,
		runID:      runID(),
		layout:     layout,
		store:      trash.NewStore(layout),
		catalog:    trash.NewCatalog(layout),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		confirm:    ui.Confirm,
		confirmYes: ui.ConfirmYes,
	}, nil
}

// setupLogger installs the default logger. Logs go to the rotating log
// file when logging is enabled and are discarded otherwise.
func setupLogger(cfg config.LoggingConfig) func() {
	if !cfg.Enabled {
		log.New(log.WithWriter(io.Discard), log.AsDefault())
		return func() {}
	}

	var rw *log.RotateWriter
	log.New(
		log.WithWriter(io.Discard),
		log.WithOutputFunc(func() (io.Writer, error) {
			w, err := log.NewRotateWriter(env.SAFERM_LOG_PATH, cfg)
			if err != nil {
				return nil, err
			}
			rw = w
			return w, nil
		}),
		log.WithLevel(log.ParseLevel(cfg.Level)),
		log.WithCaller(),
		log.WithTimestamp(time.DateTime),
		log.WithFields("run_id", runID()),
		log.AsDefault(),
	)
	return func() {
		if rw != nil {
			rw.Close()
		}
	}
}

func dump(v any) string {
	p := pp.New()
	p.SetColoringEnabled(false)
	return p.Sprint(v)
}

func (c *CLI) Run(args []string) error {
	modes := 0
	for _, set := range []bool{c.option.Restore, c.option.List, c.option.Purge, c.option.PurgeNo, c.option.Prune, c.option.Empty} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errConflictingModes
	}
	if c.option.To != "" && !c.option.Restore {
		return errors.New("--to can only be used with -b")
	}
	if c.option.Older != "" && !c.option.Empty {
		return errors.New("--older-than can only be used with --empty")
	}

	switch {
	case c.option.Restore:
		return c.Restore(args)
	case c.option.List:
		return c.List()
	case c.option.Purge, c.option.PurgeNo:
		return c.Purge(args)
	case c.option.Prune:
		return c.Prune()
	case c.option.Empty:
		return c.Empty()
	default:
		return c.Put(args)
	}
}

// assumeYes reports whether prompts are skipped
func (c *CLI) assumeYes() bool {
	return c.option.Yes || c.option.Rm.Force
}

func (c *CLI) verbose() bool {
	return c.option.Rm.Verbose || c.config.Core.Verbose
}
