// Package pages implements the per-route views of the storyline shell.
//
// A page has a two-phase lifecycle. Render produces the initial markup and
// must not perform I/O. AfterRender binds the page's key subscriptions and
// returns the initial load command. The shell calls Dispose before it
// replaces the page; after that the page ignores every message.
package pages

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"storyline/cmd/storyline/ui"
	"storyline/internal/logging"
	"storyline/internal/presenter"
	"storyline/internal/session"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Page is one routed view.
type Page interface {
	Render() string
	AfterRender(ctx context.Context) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Bindings() []key.Binding
	Dispose()
}

// API is everything the pages reach through their presenters.
type API interface {
	presenter.StoryLister
	presenter.StoryGetter
	presenter.Authenticator
	presenter.Registrar
	presenter.StoryCreator
	presenter.PushSubscriber
}

// SessionStore is the session plus the stored push endpoint.
type SessionStore interface {
	session.Store
	PushEndpoint() (string, error)
	SetPushEndpoint(endpoint string) error
}

// Settings are the config values pages read.
type Settings struct {
	PageSize         int
	WithLocation     bool
	MarkdownStyle    string
	WordWrap         int
	SubscriptionFile string
}

// Deps is shared by every page the shell creates. The shell updates Styles,
// Settings and Layout in place on resize and config reload.
type Deps struct {
	API      API
	Session  SessionStore
	Styles   ui.Styles
	Settings Settings
	Layout   ui.LayoutConfig

	// OpenFile opens a photo for upload. Defaults to os.Open.
	OpenFile func(path string) (io.ReadCloser, error)
	// Now is the clock used for relative dates.
	Now func() time.Time
}

func (d *Deps) open(path string) (io.ReadCloser, error) {
	if d.OpenFile != nil {
		return d.OpenFile(path)
	}
	return os.Open(path)
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// NavigateMsg asks the shell to change location, e.g. "#/login".
type NavigateMsg struct{ Hash string }

// AlertMsg asks the shell for a blocking notice. When Then is set the shell
// navigates there as well; the notice stays up over the new page.
type AlertMsg struct {
	Text string
	Then string
}

// Navigate returns a command producing a NavigateMsg.
func Navigate(hash string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Hash: hash} }
}

// Alert returns a command producing an AlertMsg.
func Alert(text, then string) tea.Cmd {
	return func() tea.Msg { return AlertMsg{Text: text, Then: then} }
}

// base carries the lifecycle every page shares: the page context, the key
// subscription list, owned resources and commands queued by callbacks.
type base struct {
	name     string
	deps     *Deps
	ctx      context.Context
	cancel   context.CancelFunc
	bindings []key.Binding
	pending  []tea.Cmd
	disposed bool

	mu    sync.Mutex
	owned []io.Closer
}

func newBase(name string, deps *Deps) base {
	return base{name: name, deps: deps, ctx: context.Background()}
}

// start derives the page context and installs the key subscriptions.
func (b *base) start(ctx context.Context, bindings ...key.Binding) {
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.bindings = bindings
	logging.PagesDebug("%s bound %d key bindings", b.name, len(bindings))
}

func (b *base) Bindings() []key.Binding {
	return b.bindings
}

// own registers a resource released at Dispose unless released earlier.
func (b *base) own(c io.Closer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owned = append(b.owned, c)
}

// release closes c now and forgets it.
func (b *base) release(c io.Closer) {
	b.mu.Lock()
	for i, o := range b.owned {
		if o == c {
			b.owned = append(b.owned[:i], b.owned[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	if err := c.Close(); err != nil {
		logging.Get(logging.CategoryPages).Warn("%s: close failed: %v", b.name, err)
	}
}

// emit queues a command to be returned from the current Update.
func (b *base) emit(cmd tea.Cmd) {
	if cmd != nil {
		b.pending = append(b.pending, cmd)
	}
}

func (b *base) flush() tea.Cmd {
	if len(b.pending) == 0 {
		return nil
	}
	cmds := b.pending
	b.pending = nil
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// applyOutcome runs a presenter result on the UI loop.
func (b *base) applyOutcome(o presenter.Outcome) tea.Cmd {
	o.Apply()
	return b.flush()
}

func (b *base) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	if b.cancel != nil {
		b.cancel()
	}
	b.bindings = nil
	b.pending = nil

	b.mu.Lock()
	owned := b.owned
	b.owned = nil
	b.mu.Unlock()
	for _, c := range owned {
		if err := c.Close(); err != nil {
			logging.Get(logging.CategoryPages).Warn("%s: close on dispose failed: %v", b.name, err)
		}
	}
	logging.PagesDebug("%s disposed (released %d resources)", b.name, len(owned))
}

func (b *base) styles() ui.Styles { return b.deps.Styles }

func (b *base) contentWidth() int {
	w := b.deps.Layout.ContentWidth()
	if w <= 0 {
		return 80
	}
	return w
}

// wrapWidth is the markdown wrap width: the configured word wrap, capped by the page width.
func (b *base) wrapWidth() int {
	w := b.contentWidth()
	if ww := b.deps.Settings.WordWrap; ww > 0 && ww < w {
		return ww
	}
	return w
}
