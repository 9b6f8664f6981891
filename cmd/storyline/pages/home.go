package pages

import (
	"context"
	"fmt"
	"strings"

	"storyline/cmd/storyline/ui"
	"storyline/internal/api"
	"storyline/internal/logging"
	"storyline/internal/presenter"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type homeKeys struct {
	Up, Down, Open, Next, Prev, Location, Reload key.Binding
}

func newHomeKeys() homeKeys {
	return homeKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read more")),
		Next:     key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		Prev:     key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		Location: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "with location")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// listLoaded carries the result of the seq-th list request.
type listLoaded struct {
	seq int
	msg tea.Msg
}

// Home lists stories. Only the result of the latest list request is applied.
type Home struct {
	base
	keys      homeKeys
	presenter *presenter.Stories

	query    api.ListQuery
	stories  []api.Story
	selected int
	loading  bool
	errText  string
	seq      int
}

func NewHome(deps *Deps) *Home {
	p := &Home{
		base: newBase("home", deps),
		keys: newHomeKeys(),
		query: api.ListQuery{
			Page:     1,
			Size:     deps.Settings.PageSize,
			Location: deps.Settings.WithLocation,
		},
	}
	p.presenter = presenter.NewStories(p, deps.API)
	return p
}

func (p *Home) Render() string {
	s := p.styles()
	return s.Title.Render("All Stories") + "\n" + s.Muted.Render("Loading stories...")
}

func (p *Home) AfterRender(ctx context.Context) tea.Cmd {
	p.start(ctx, p.keys.Up, p.keys.Down, p.keys.Open, p.keys.Next, p.keys.Prev, p.keys.Location, p.keys.Reload)
	return p.load()
}

func (p *Home) load() tea.Cmd {
	p.loading = true
	p.seq++
	seq := p.seq
	cmd := p.presenter.Load(p.ctx, p.query)
	return func() tea.Msg {
		return listLoaded{seq: seq, msg: cmd()}
	}
}

// ShowStories is the presenter's success callback.
func (p *Home) ShowStories(stories []api.Story) {
	p.loading = false
	p.errText = ""
	p.stories = stories
	p.selected = 0
}

// ShowError is the presenter's failure callback.
func (p *Home) ShowError(message string) {
	p.loading = false
	p.stories = nil
	p.errText = fmt.Sprintf("Failed to load stories: %s. Please login.", message)
}

func (p *Home) Update(msg tea.Msg) tea.Cmd {
	if p.disposed {
		return nil
	}
	switch msg := msg.(type) {
	case listLoaded:
		if msg.seq != p.seq {
			logging.Get(logging.CategoryPages).Debug("home: dropping list result %d, latest is %d", msg.seq, p.seq)
			return nil
		}
		if o, ok := msg.msg.(presenter.Outcome); ok {
			return p.applyOutcome(o)
		}
	case presenter.Outcome:
		return p.applyOutcome(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Up):
			if p.selected > 0 {
				p.selected--
			}
		case key.Matches(msg, p.keys.Down):
			if p.selected < len(p.stories)-1 {
				p.selected++
			}
		case key.Matches(msg, p.keys.Open):
			if p.selected < len(p.stories) {
				return Navigate("#/stories/" + p.stories[p.selected].ID)
			}
		case key.Matches(msg, p.keys.Next):
			if p.loading || (p.query.Size > 0 && len(p.stories) < p.query.Size) {
				return nil
			}
			p.query.Page++
			return p.load()
		case key.Matches(msg, p.keys.Prev):
			if p.loading || p.query.Page <= 1 {
				return nil
			}
			p.query.Page--
			return p.load()
		case key.Matches(msg, p.keys.Location):
			p.query.Location = !p.query.Location
			p.query.Page = 1
			return p.load()
		case key.Matches(msg, p.keys.Reload):
			return p.load()
		}
	}
	return nil
}

// Selected returns the highlighted story, if any.
func (p *Home) Selected() (api.Story, bool) {
	if p.selected < len(p.stories) {
		return p.stories[p.selected], true
	}
	return api.Story{}, false
}

func (p *Home) View() string {
	s := p.styles()
	var b strings.Builder

	title := "All Stories"
	if p.query.Location {
		title += " " + s.Badge.Render("with location")
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")

	switch {
	case p.errText != "":
		b.WriteString(s.Error.Render(p.errText))
		return b.String()
	case p.loading && len(p.stories) == 0:
		b.WriteString(s.Muted.Render("Loading stories..."))
		return b.String()
	case len(p.stories) == 0:
		b.WriteString(s.Body.Render("No stories available."))
		return b.String()
	}

	width := p.contentWidth() - 4
	now := p.deps.now()
	for i, st := range p.stories {
		card := s.Card
		if i == p.selected {
			card = s.Selected
		}
		lines := []string{
			s.Bold.Render(st.Name),
			s.Muted.Render(ui.FormatCreated(st.CreatedAt, now)),
			s.Body.Render(ui.Truncate(ui.PlainText(st.Description), ui.CardDescriptionRunes)),
		}
		if st.HasLocation() {
			lines = append(lines, s.Info.Render(fmt.Sprintf("Lat %.6f, Lon %.6f", *st.Lat, *st.Lon)))
		}
		b.WriteString(card.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		b.WriteString("\n")
	}
	b.WriteString(s.Muted.Render(fmt.Sprintf("Page %d", p.query.Page)))
	return b.String()
}
