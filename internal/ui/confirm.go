package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jimschubert/answer/colors"
)

// Decision is the outcome of a confirmation prompt
type Decision int

const (
	// Undecided indicates the user has not answered yet
	Undecided Decision = iota

	// Accepted indicates a positive answer
	Accepted

	// Denied indicates a negative answer, including cancellation
	Denied
)

// String satisfies the fmt.Stringer interface
func (d Decision) String() string {
	return [...]string{
		"undecided",
		"accepted",
		"denied",
	}[d]
}

// IsAccepted is a helper to indicate the positive confirmation state was selected
func (d Decision) IsAccepted() bool {
	return d == Accepted
}

// KeyMap holds the bindings of the y/N prompt
type KeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Enter  key.Binding
	Cancel key.Binding
}

var DefaultKeyMap = KeyMap{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
	Enter:  key.NewBinding(key.WithKeys(tea.KeyEnter.String()), key.WithHelp("enter", "default")),
	Cancel: key.NewBinding(key.WithKeys(tea.KeyCtrlC.String(), tea.KeyEsc.String())),
}

// Styles holds relevant styles used for rendering
type Styles struct {
	PromptPrefix lipgloss.Style
	Prompt       lipgloss.Style
	Placeholder  lipgloss.Style
	Answer       lipgloss.Style
}

// ConfirmModel answers on a single key press: y accepts, n denies,
// enter takes the default and esc or ctrl+c deny.
type ConfirmModel struct {
	// PromptPrefix is displayed before the prompt, separately styled
	PromptPrefix string

	// Prompt is the question displayed to the user
	Prompt string

	// DefaultValue is selected when the user just hits enter
	DefaultValue Decision

	KeyMap KeyMap
	Styles Styles

	selected Decision
	done     bool
}

// NewConfirm creates a y/N prompt defaulting to Denied
func NewConfirm(prompt string) ConfirmModel {
	return ConfirmModel{
		PromptPrefix: "? ",
		Prompt:       prompt,
		DefaultValue: Denied,
		KeyMap:       DefaultKeyMap,
		Styles: Styles{
			PromptPrefix: lipgloss.NewStyle().Foreground(lipgloss.Color(colors.PromptPrefix)),
			Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Placeholder)),
			Answer:       lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		},
	}
}

// Selected returns the decision, Undecided until the user answered
func (m *ConfirmModel) Selected() Decision {
	return m.selected
}

// Init satisfies the tea.Model interface
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update satisfies the tea.Model interface
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.KeyMap.Yes):
		m.selected = Accepted
	case key.Matches(keyMsg, m.KeyMap.No), key.Matches(keyMsg, m.KeyMap.Cancel):
		m.selected = Denied
	case key.Matches(keyMsg, m.KeyMap.Enter):
		m.selected = m.DefaultValue
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

// View satisfies the tea.Model interface
func (m *ConfirmModel) View() string {
	var b strings.Builder
	b.WriteString(m.Styles.PromptPrefix.Inline(true).Render(m.PromptPrefix))
	b.WriteString(m.Styles.Prompt.Inline(true).Render(m.Prompt))
	b.WriteString(" ")

	if m.done {
		answer := "no"
		if m.selected.IsAccepted() {
			answer = "yes"
		}
		b.WriteString(m.Styles.Answer.Inline(true).Render(answer))
		b.WriteRune('\n')
		return b.String()
	}

	hint := "y/N"
	if m.DefaultValue == Accepted {
		hint = "Y/n"
	}
	b.WriteString(m.Styles.Placeholder.Inline(true).Render(hint))
	return b.String()
}
