// Package log builds the slog loggers saferm writes its debug log with.
// Records are rendered by charmbracelet/log so the file reads the same
// as the terminal output of the other charm tools.
package log

import (
	"log/slog"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// DefaultStyles returns the level styles shared by every logger
var DefaultStyles = sync.OnceValue(buildStyles)

var installed atomic.Pointer[slog.Logger]

// New builds a logger. With AsDefault it also replaces the process-wide
// slog and charmbracelet defaults.
func New(opts ...Option) *slog.Logger {
	o := DefaultOptions()
	o.Apply(opts...)

	w := o.Writer
	if o.OutputFunc != nil {
		if out, err := o.OutputFunc(); err == nil {
			w = out
		}
	}

	h := charmlog.NewWithOptions(w, o.Options)
	h.SetStyles(o.Styles)
	l := slog.New(h).With(o.Fields...)

	if o.Default {
		charmlog.SetDefault(h)
		slog.SetDefault(l)
		installed.Store(l)
	}
	return l
}

// Default returns the logger installed with AsDefault, or slog's default
func Default() *slog.Logger {
	if l := installed.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Reset forgets the installed logger; tests call it in t.Cleanup
func Reset() {
	installed.Store(nil)
}
