package pages

import (
	"context"
	"testing"
	"time"

	"storyline/cmd/storyline/ui"
	"storyline/internal/api"
	"storyline/internal/api/apitest"
	"storyline/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	deps    *Deps
	srv     *apitest.Server
	session *session.KVStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := apitest.NewServer(t)
	sess := session.NewMemoryStore()
	deps := &Deps{
		API:     api.New(srv.URL, sess),
		Session: sess,
		Styles:  ui.NewStyles(ui.LightTheme()),
		Settings: Settings{
			PageSize:      10,
			MarkdownStyle: "notty",
			WordWrap:      80,
		},
		Layout: ui.NewLayoutConfig(100, 40),
		Now:    func() time.Time { return fixedNow },
	}
	return &env{deps: deps, srv: srv, session: sess}
}

// signIn stores a token the fake server accepts.
func (e *env) signIn(t *testing.T) {
	t.Helper()
	uid := e.srv.AddUser("Ann", "a@b.com", "secret123")
	require.NoError(t, e.session.Set(e.srv.IssueToken(uid), uid, "Ann"))
}

// mount renders the page and runs AfterRender plus its initial load.
func mount(t *testing.T, p Page) tea.Cmd {
	t.Helper()
	_ = p.Render()
	cmd := p.AfterRender(context.Background())
	if cmd == nil {
		return nil
	}
	return p.Update(cmd())
}

// deliver runs cmd and feeds its message back to the page.
func deliver(t *testing.T, p Page, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	return p.Update(cmd())
}

// messages executes cmd and flattens batches.
func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, messages(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ptr(f float64) *float64 { return &f }
