package shell

import (
	"strings"

	"storyline/cmd/storyline/ui"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View renders the frame.
func (m Model) View() string {
	s := m.deps.Styles
	layout := m.deps.Layout
	if layout.TerminalWidth == 0 {
		layout = ui.NewLayoutConfig(80, 24)
	}

	sections := []string{
		m.renderHeader(s, layout.TerminalWidth),
		m.renderNav(s, layout.TerminalWidth),
	}
	if m.alert != "" {
		sections = append(sections, s.Alert.Render(m.alert+"\n\n"+s.Muted.Render("enter to dismiss")))
	}
	sections = append(sections, s.Content.Width(layout.TerminalWidth).Render(m.mount))
	sections = append(sections, m.renderFooter(s))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(s ui.Styles, width int) string {
	title := s.Header.Render("Storyline")
	loc := s.Location.Render(m.location)
	if m.loading {
		loc += " " + m.spinner.View()
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(loc)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + loc
}

func (m Model) renderNav(s ui.Styles, width int) string {
	items := make([]string, 0, len(m.nav))
	for i, it := range m.nav {
		style := s.NavItem
		if m.focus == focusMenu && i == m.navIndex {
			style = s.NavFocus
		}
		items = append(items, style.Render(it.Label))
	}
	return s.Nav.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

func (m Model) renderFooter(s ui.Styles) string {
	if m.gotoOpen {
		return s.Footer.Render(m.gotoIn.View())
	}
	var bindings []key.Binding
	if m.current != nil && m.focus == focusPage {
		bindings = append(bindings, m.current.Bindings()...)
	}
	if m.focus == focusMenu {
		bindings = append(bindings, m.keys.Left, m.keys.Right, m.keys.Select)
	}
	bindings = append(bindings, m.keys.Focus, m.keys.Goto, m.keys.Quit)
	return s.Footer.Render(m.help.ShortHelpView(bindings))
}
