// Package shell is the storyline application frame: header, navigation
// menu, the mounted page and the footer. It owns location changes. Each
// change disposes the current page, renders the next one and discards any
// result that belongs to a page it already replaced.
package shell

import (
	"context"

	"storyline/cmd/storyline/pages"
	"storyline/cmd/storyline/ui"
	"storyline/internal/config"
	"storyline/internal/logging"
	"storyline/internal/router"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type focusArea int

const (
	focusPage focusArea = iota
	focusMenu
)

// Logouter ends the session.
type Logouter interface {
	Logout() error
}

// Options configures a shell.
type Options struct {
	Deps      *pages.Deps
	Logout    Logouter
	StartPath string
	Workspace string // resolves relative paths on config reload
}

// ConfigReloadedMsg carries a config that changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// settledMsg is the initial load of the page mounted at gen.
type settledMsg struct {
	gen int
	msg tea.Msg
}

// pageMsg is any later result produced by the page mounted at gen.
type pageMsg struct {
	gen int
	msg tea.Msg
}

// Model is the root bubbletea model.
type Model struct {
	ctx       context.Context
	deps      *pages.Deps
	logout    Logouter
	routes    *router.Table[pages.Page]
	keys      KeyMap
	start     string
	workspace string

	current  pages.Page
	route    router.ActiveRoute
	location string
	gen      int
	mount    string
	loading  bool

	nav      []NavItem
	navIndex int
	focus    focusArea

	alert    string
	gotoOpen bool
	gotoIn   textinput.Model
	spinner  spinner.Model
	help     help.Model

	width, height int
}

// New builds a shell. ctx bounds every page context.
func New(ctx context.Context, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Deps.Styles.Spinner

	gi := textinput.New()
	gi.Prompt = "go to: "
	gi.Placeholder = "#/stories/<id>"
	gi.CharLimit = 256

	start := opts.StartPath
	if start == "" {
		start = "#/"
	}
	m := Model{
		ctx:       ctx,
		deps:      opts.Deps,
		logout:    opts.Logout,
		routes:    Routes(opts.Deps),
		keys:      DefaultKeyMap(),
		start:     start,
		workspace: opts.Workspace,
		gotoIn:    gi,
		spinner:   sp,
		help:      help.New(),
	}
	return m.refreshNavigation()
}

// Init mounts the start location.
func (m Model) Init() tea.Cmd {
	logging.Shell("shell starting at %s (authenticated=%v)", m.start, m.session().Authenticated())
	return tea.Batch(m.spinner.Tick, Navigate(m.start))
}

// Navigate is a command that changes the shell location.
func Navigate(hash string) tea.Cmd {
	return pages.Navigate(hash)
}

// Location is the current "#/..." location.
func (m Model) Location() string { return m.location }

// Page is the mounted page, nil before the first navigation.
func (m Model) Page() pages.Page { return m.current }

// Generation counts render cycles.
func (m Model) Generation() int { return m.gen }

// Loading reports whether the mounted page's initial load is in flight.
func (m Model) Loading() bool { return m.loading }

// Alert is the notice on screen, if any.
func (m Model) Alert() string { return m.alert }

// Nav is the current menu.
func (m Model) Nav() []NavItem { return m.nav }

// Content is the main region as last rendered.
func (m Model) Content() string { return m.mount }

// SettingsFromConfig extracts the page settings from cfg.
func SettingsFromConfig(cfg *config.Config, workspace string) pages.Settings {
	return pages.Settings{
		PageSize:         cfg.Stories.PageSize,
		WithLocation:     cfg.Stories.WithLocation,
		MarkdownStyle:    cfg.UI.MarkdownStyle,
		WordWrap:         cfg.UI.WordWrap,
		SubscriptionFile: config.ResolvePath(workspace, cfg.Push.SubscriptionFile),
	}
}

// StylesFromConfig picks the theme cfg asks for.
func StylesFromConfig(cfg *config.Config) ui.Styles {
	return ui.NewStyles(ui.ThemeFor(cfg.UI.IsDark(ui.TerminalIsDark())))
}
