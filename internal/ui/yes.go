package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jimschubert/answer/colors"
)

// yesWord is what must be typed to accept a YesModel prompt
const yesWord = "YES"

// YesModel only accepts the word YES typed in full, for operations that
// cannot be undone at all. Only the letters of YES in sequence are
// accepted as input.
type YesModel struct {
	PromptPrefix string
	Prompt       string
	KeyMap       KeyMap
	Styles       Styles

	validStyle   lipgloss.Style
	invalidStyle lipgloss.Style

	text     textinput.Model
	selected Decision
	done     bool
}

func NewYes(prompt string) YesModel {
	return YesModel{
		PromptPrefix: "? ",
		Prompt:       prompt,
		KeyMap:       DefaultKeyMap,
		Styles: Styles{
			PromptPrefix: lipgloss.NewStyle().Foreground(lipgloss.Color(colors.PromptPrefix)),
			Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Placeholder)),
			Answer:       lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		},
		validStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")),
		invalidStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")),
	}
}

// isValidYesChar reports whether s may follow current on the way to YES
func isValidYesChar(s, current string) bool {
	return len(current) < len(yesWord) && s == string(yesWord[len(current)])
}

func (m *YesModel) Selected() Decision {
	return m.selected
}

// Init satisfies the tea.Model interface
func (m *YesModel) Init() tea.Cmd {
	input := textinput.New()
	input.Placeholder = yesWord
	input.Prompt = m.Prompt + " "
	input.PromptStyle = m.Styles.Prompt
	input.PlaceholderStyle = m.Styles.Placeholder
	input.CharLimit = len(yesWord)
	input.Focus()
	m.text = input
	return nil
}

// Update satisfies the tea.Model interface
func (m *YesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(keyMsg, m.KeyMap.Cancel):
		m.selected = Denied
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.KeyMap.Enter):
		if m.text.Value() == yesWord {
			m.selected = Accepted
			m.done = true
			return m, tea.Quit
		}
	case keyMsg.Type == tea.KeyBackspace:
		m.text, cmd = m.text.Update(msg)
	default:
		if isValidYesChar(keyMsg.String(), m.text.Value()) {
			m.text, cmd = m.text.Update(msg)
		}
	}
	return m, cmd
}

// View satisfies the tea.Model interface
func (m *YesModel) View() string {
	var b strings.Builder
	b.WriteString(m.Styles.PromptPrefix.Inline(true).Render(m.PromptPrefix))

	if m.done {
		b.WriteString(m.Styles.Prompt.Inline(true).Render(m.Prompt))
		b.WriteString(" ")
		answer := "no"
		if m.selected.IsAccepted() {
			answer = yesWord
		}
		b.WriteString(m.Styles.Answer.Inline(true).Render(answer))
		b.WriteRune('\n')
		return b.String()
	}

	b.WriteString(m.text.View())
	b.WriteString(" ")
	if m.text.Value() == yesWord {
		b.WriteString(m.validStyle.Render("✓"))
	} else {
		b.WriteString(m.invalidStyle.Render("✗"))
	}
	return b.String()
}
