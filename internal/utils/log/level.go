package log

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

type (
	Level  = charmlog.Level
	Styles = charmlog.Styles
)

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
)

// ParseLevel converts core.logging.level ("debug", "WARN", ...) into a Level.
// Unknown values fall back to InfoLevel.
func ParseLevel(s string) Level {
	l, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return InfoLevel
	}
	return l
}

// SetLevel changes the level of l, or of the default logger when l is nil.
// It is how -v turns on debug output after the logger is built.
func SetLevel(level Level, l *slog.Logger) {
	if l == nil {
		l = Default()
	}
	if h, ok := l.Handler().(*charmlog.Logger); ok {
		h.SetLevel(level)
	}
}

// ANSI palette indices, so the labels follow the terminal theme
var levelColors = map[Level]string{
	DebugLevel: "8",
	InfoLevel:  "12",
	WarnLevel:  "11",
	ErrorLevel: "9",
}

func buildStyles() *Styles {
	styles := charmlog.DefaultStyles()
	width := 0
	for level := range levelColors {
		width = max(width, len(level.String()))
	}
	for level, color := range levelColors {
		label := fmt.Sprintf("%-*s", width, strings.ToUpper(level.String()))
		styles.Levels[level] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Bold(level >= WarnLevel).
			SetString(label)
	}
	return styles
}
