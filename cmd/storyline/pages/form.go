package pages

import (
	"strings"

	"storyline/cmd/storyline/ui"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formKeys struct {
	Next, Prev, Submit key.Binding
}

func newFormKeys(submitHelp string) formKeys {
	return formKeys{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", submitHelp)),
	}
}

type field struct {
	label string
	input textinput.Model
}

// form is a vertical list of labelled text inputs.
type form struct {
	fields []field
	focus  int
}

func newField(label, placeholder string, limit int) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	return field{label: label, input: ti}
}

func passwordField(label string) field {
	f := newField(label, "", 128)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) raw(i int) string {
	return f.fields[i].input.Value()
}

func (f *form) set(i int, v string) {
	f.fields[i].input.SetValue(v)
}

func (f *form) focusField(i int) tea.Cmd {
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

// update moves focus on navigation keys and otherwise feeds the focused input.
func (f *form) update(msg tea.Msg, keys formKeys) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Next):
			return f.focusField(f.focus + 1)
		case key.Matches(km, keys.Prev):
			return f.focusField(f.focus - 1)
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view(s ui.Styles) string {
	rows := make([]string, 0, len(f.fields))
	for _, fl := range f.fields {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render(fl.label+":"), fl.input.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
