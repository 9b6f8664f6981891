package shell

import (
	"storyline/internal/logging"
	"storyline/internal/session"
)

// NavItem is one entry of the navigation menu.
type NavItem struct {
	Label  string
	Hash   string
	Logout bool
}

func authenticatedNav(s session.Session) []NavItem {
	return []NavItem{
		{Label: "Home", Hash: "#/"},
		{Label: "Add Story", Hash: "#/add-story"},
		{Label: "Notifications", Hash: "#/notifications"},
		{Label: "About", Hash: "#/about"},
		{Label: "Logout (" + s.UserName + ")", Logout: true},
	}
}

func anonymousNav() []NavItem {
	return []NavItem{
		{Label: "Home", Hash: "#/"},
		{Label: "About", Hash: "#/about"},
		{Label: "Login", Hash: "#/login"},
		{Label: "Register", Hash: "#/register"},
	}
}

// session reads the current session. A read failure counts as signed out.
func (m Model) session() session.Session {
	s, err := m.deps.Session.Get()
	if err != nil {
		logging.Get(logging.CategoryShell).Warn("reading session: %v", err)
		return session.Session{}
	}
	return s
}

// refreshNavigation rebuilds the menu from the stored session.
func (m Model) refreshNavigation() Model {
	s := m.session()
	if s.Authenticated() {
		m.nav = authenticatedNav(s)
	} else {
		m.nav = anonymousNav()
	}
	if m.navIndex >= len(m.nav) {
		m.navIndex = len(m.nav) - 1
	}
	logging.ShellDebug("navigation refreshed (authenticated=%v)", s.Authenticated())
	return m
}
