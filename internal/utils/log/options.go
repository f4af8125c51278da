package log

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Options configures a logger built by New
type Options struct {
	charmlog.Options

	// Writer receives records unless OutputFunc yields a writer
	Writer io.Writer

	// OutputFunc opens the output lazily, e.g. the rotating log file
	OutputFunc func() (io.Writer, error)

	Styles *Styles

	// Fields are attached to every record
	Fields []any

	// Default installs the logger as the slog and charmbracelet default
	Default bool
}

type Option func(*Options)

// DefaultOptions logs at info level to stderr without caller or time
func DefaultOptions() *Options {
	return &Options{
		Options: charmlog.Options{Level: InfoLevel},
		Writer:  os.Stderr,
		Styles:  DefaultStyles(),
	}
}

// Apply applies the given options
func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

func WithLevel(l Level) Option {
	return func(o *Options) { o.Level = l }
}

func WithWriter(w io.Writer) Option {
	return func(o *Options) { o.Writer = w }
}

// WithOutputFunc defers opening the output until the logger is built.
// If f fails, the logger keeps its current writer.
func WithOutputFunc(f func() (io.Writer, error)) Option {
	return func(o *Options) { o.OutputFunc = f }
}

// WithCaller reports the file and line of each call site
func WithCaller() Option {
	return func(o *Options) { o.ReportCaller = true }
}

// WithTimestamp stamps every record using layout
func WithTimestamp(layout string) Option {
	return func(o *Options) {
		o.ReportTimestamp = true
		o.TimeFormat = layout
	}
}

// WithFields attaches key/value pairs to every record, e.g. the run id
func WithFields(kv ...any) Option {
	return func(o *Options) { o.Fields = append(o.Fields, kv...) }
}

func AsDefault() Option {
	return func(o *Options) { o.Default = true }
}
