package ui

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Confirm asks a y/N question on stderr and reports whether the user
// accepted. When stdin is not a terminal a line is read instead. Any
// failure to ask counts as no.
func Confirm(prompt string) bool {
	if !isTerminal(os.Stdin) {
		return confirmLine(os.Stdin, os.Stderr, prompt, false)
	}

	m := NewConfirm(prompt)
	if _, err := tea.NewProgram(&m, tea.WithOutput(os.Stderr)).Run(); err != nil {
		slog.Error("confirm failed", "error", err)
		return false
	}
	return m.Selected().IsAccepted()
}

// ConfirmYes is Confirm for irreversible operations: the user has to type YES
func ConfirmYes(prompt string) bool {
	if !isTerminal(os.Stdin) {
		return confirmLine(os.Stdin, os.Stderr, prompt, true)
	}

	m := NewYes(prompt)
	if _, err := tea.NewProgram(&m, tea.WithOutput(os.Stderr)).Run(); err != nil {
		slog.Error("confirmYes failed", "error", err)
		return false
	}
	return m.Selected().IsAccepted()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// confirmLine writes prompt to w and reads one answer line from r. Only
// y or yes (or exactly YES when strict) accept; EOF denies.
func confirmLine(r io.Reader, w io.Writer, prompt string, strict bool) bool {
	hint := "[y/N]"
	if strict {
		hint = "(type " + yesWord + ")"
	}
	fmt.Fprintf(w, "%s %s ", prompt, hint)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(w)
		return false
	}
	answer := strings.TrimSpace(line)

	if strict {
		return answer == yesWord
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
