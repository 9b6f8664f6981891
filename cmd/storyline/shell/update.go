package shell

import (
	"storyline/cmd/storyline/pages"
	"storyline/cmd/storyline/ui"
	"storyline/internal/logging"
	"storyline/internal/router"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.deps.Layout = ui.NewLayoutConfig(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m.deliver(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pages.NavigateMsg:
		return m.navigate(msg.Hash)

	case pages.AlertMsg:
		return m.showAlert(msg)

	case settledMsg:
		if msg.gen != m.gen {
			logging.Audit().StaleDiscard(msg.gen, m.gen)
			return m, nil
		}
		return m.settle(msg.msg)

	case pageMsg:
		if msg.gen != m.gen {
			logging.Audit().StaleDiscard(msg.gen, m.gen)
			return m, nil
		}
		return m.pageResult(msg.msg)

	case ConfigReloadedMsg:
		return m.applyConfig(msg)
	}
	return m, nil
}

// navigate runs one render cycle for hash: dispose the old page, gate
// protected routes, construct and render the new page, then start its load.
func (m Model) navigate(hash string) (Model, tea.Cmd) {
	path := router.ParseHash(hash)

	if m.current != nil {
		m.current.Dispose()
		m.current = nil
	}
	m.gen++
	m.loading = false
	m.focus = focusPage
	m.gotoOpen = false

	active, route, ok := m.routes.Lookup(path)
	if ok {
		if err := Gate(route.Pattern, m.session()); err != nil {
			logging.Audit().NavigateDenied(path)
			logging.Routing("denied %s: %v", path, err)
			m.alert = err.Error()
			return m.navigate("#/login")
		}
	}

	m.location = router.Hash(path)
	var page pages.Page
	if ok {
		logging.Audit().Navigate(path, m.gen)
		page = route.Factory(active)
	} else {
		logging.Audit().Log(logging.AuditEvent{EventType: logging.AuditNotFound, Target: path, Generation: m.gen})
		active = router.ActiveRoute{Path: path, Params: map[string]string{}}
		page = pages.NewNotFound(m.deps, active)
	}
	m.current = page
	m.route = active

	m.mount = page.Render()
	load := page.AfterRender(m.ctx)
	m.mount = page.View()
	if load == nil {
		return m.refreshNavigation(), nil
	}
	m.loading = true
	gen := m.gen
	return m, func() tea.Msg { return settledMsg{gen: gen, msg: load()} }
}

// settle delivers the initial load and refreshes the menu.
func (m Model) settle(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if batch, ok := msg.(tea.BatchMsg); ok {
		cmd = m.wrapBatch(batch)
	} else {
		m, cmd = m.deliver(msg)
	}
	m.loading = false
	if m.current != nil {
		m.mount = m.current.View()
	}
	return m.refreshNavigation(), cmd
}

// pageResult routes a later page result. Navigation and alerts are the
// shell's; everything else goes back to the page.
func (m Model) pageResult(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case nil:
		return m, nil
	case pages.NavigateMsg:
		return m.navigate(msg.Hash)
	case pages.AlertMsg:
		return m.showAlert(msg)
	case tea.BatchMsg:
		return m, m.wrapBatch(msg)
	}
	return m.deliver(msg)
}

func (m Model) showAlert(msg pages.AlertMsg) (Model, tea.Cmd) {
	m.alert = msg.Text
	logging.ShellDebug("alert: %s", msg.Text)
	if msg.Then != "" {
		return m.navigate(msg.Then)
	}
	return m, nil
}

// deliver hands msg to the mounted page and tags what comes back.
func (m Model) deliver(msg tea.Msg) (Model, tea.Cmd) {
	if m.current == nil {
		return m, nil
	}
	cmd := m.current.Update(msg)
	m.mount = m.current.View()
	return m, m.wrap(cmd)
}

func (m Model) wrap(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	gen := m.gen
	return func() tea.Msg { return pageMsg{gen: gen, msg: cmd()} }
}

func (m Model) wrapBatch(batch tea.BatchMsg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(batch))
	for _, c := range batch {
		cmds = append(cmds, m.wrap(c))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	if m.alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.alert = ""
		}
		return m, nil
	}

	if m.gotoOpen {
		switch msg.Type {
		case tea.KeyEnter:
			target := m.gotoIn.Value()
			m.gotoOpen = false
			m.gotoIn.Blur()
			m.gotoIn.Reset()
			return m.navigate(target)
		case tea.KeyEsc:
			m.gotoOpen = false
			m.gotoIn.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.gotoIn, cmd = m.gotoIn.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Goto):
		m.gotoOpen = true
		m.gotoIn.SetValue(m.location)
		return m, m.gotoIn.Focus()
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusMenu {
			m.focus = focusPage
		} else {
			m.focus = focusMenu
		}
		return m, nil
	}

	if m.focus == focusMenu {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.navIndex = (m.navIndex + len(m.nav) - 1) % len(m.nav)
		case key.Matches(msg, m.keys.Right):
			m.navIndex = (m.navIndex + 1) % len(m.nav)
		case key.Matches(msg, m.keys.Select):
			return m.selectNav(m.navIndex)
		}
		return m, nil
	}

	return m.deliver(msg)
}

// selectNav activates menu entry i.
func (m Model) selectNav(i int) (Model, tea.Cmd) {
	if i < 0 || i >= len(m.nav) {
		return m, nil
	}
	item := m.nav[i]
	if item.Logout {
		return m.doLogout()
	}
	return m.navigate(item.Hash)
}

func (m Model) doLogout() (Model, tea.Cmd) {
	if m.logout != nil {
		if err := m.logout.Logout(); err != nil {
			logging.Get(logging.CategoryShell).Error("logout failed: %v", err)
			m.alert = "Logout failed: " + err.Error()
			return m, nil
		}
	}
	m.alert = "You have been logged out."
	m.navIndex = 0
	m = m.refreshNavigation()
	return m.navigate("#/")
}

func (m Model) applyConfig(msg ConfigReloadedMsg) (Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	m.deps.Styles = StylesFromConfig(msg.Config)
	m.deps.Settings = SettingsFromConfig(msg.Config, m.workspace)
	m.spinner.Style = m.deps.Styles.Spinner
	logging.Config("shell applied reloaded config")
	if m.current != nil {
		m.mount = m.current.View()
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	if m.current != nil {
		m.current.Dispose()
		m.current = nil
	}
	m.gen++
	logging.Shell("shell exiting")
	return m, tea.Quit
}
