package pages

import (
	"context"
	"fmt"
	"strings"

	"storyline/cmd/storyline/ui"
	"storyline/internal/api"
	"storyline/internal/presenter"
	"storyline/internal/router"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// MapURL links to an OpenStreetMap view centred on the coordinates.
func MapURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=13/%.6f/%.6f", lat, lon, lat, lon)
}

// StoryDetail shows one story and its location.
type StoryDetail struct {
	base
	id        string
	back      key.Binding
	vp        viewport.Model
	presenter *presenter.Story

	story   *api.Story
	errText string
}

func NewStoryDetail(deps *Deps, route router.ActiveRoute) *StoryDetail {
	p := &StoryDetail{
		base: newBase("story-detail", deps),
		id:   route.Param("id"),
		back: key.NewBinding(key.WithKeys("b", "backspace"), key.WithHelp("b", "back to home")),
	}
	p.presenter = presenter.NewStory(p, deps.API)
	return p
}

func (p *StoryDetail) Render() string {
	return p.styles().Muted.Render("Loading story...")
}

func (p *StoryDetail) AfterRender(ctx context.Context) tea.Cmd {
	km := viewport.DefaultKeyMap()
	p.start(ctx, p.back, km.Up, km.Down, km.PageUp, km.PageDown)
	p.vp = viewport.New(p.contentWidth(), p.deps.Layout.ContentHeight())
	return p.presenter.Load(p.ctx, p.id)
}

func (p *StoryDetail) ShowStory(st api.Story) {
	p.story = &st
	p.errText = ""
	p.vp.SetContent(p.renderStory())
}

func (p *StoryDetail) ShowError(message string) {
	p.story = nil
	p.errText = message
	p.vp.SetContent(p.renderError())
}

// Story returns the loaded story, if any.
func (p *StoryDetail) Story() (api.Story, bool) {
	if p.story == nil {
		return api.Story{}, false
	}
	return *p.story, true
}

func (p *StoryDetail) renderStory() string {
	s := p.styles()
	st := p.story
	var b strings.Builder
	b.WriteString(s.Title.Render(st.Name))
	b.WriteString("\n")
	b.WriteString(s.Body.Render("Posted by: ") + s.Bold.Render(st.Name))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("On: " + ui.FormatCreated(st.CreatedAt, p.deps.now())))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Photo: ") + s.Link.Render(st.PhotoURL))
	b.WriteString("\n\n")
	b.WriteString(ui.Markdown(ui.PlainText(st.Description), p.deps.Settings.MarkdownStyle, p.wrapWidth()))
	b.WriteString("\n\n")
	if st.HasLocation() {
		b.WriteString(s.Info.Render(fmt.Sprintf("Location: Lat %v, Lon %v", *st.Lat, *st.Lon)))
		b.WriteString("\n")
		b.WriteString(s.Muted.Render("Map: ") + s.Link.Render(MapURL(*st.Lat, *st.Lon)))
	} else {
		b.WriteString(s.Muted.Render("Location: Not provided"))
	}
	return b.String()
}

func (p *StoryDetail) renderError() string {
	s := p.styles()
	return s.Title.Render("Error Loading Story") + "\n" +
		s.Error.Render(p.errText) + "\n\n" +
		s.Muted.Render("Press b to go back to Home.")
}

func (p *StoryDetail) Update(msg tea.Msg) tea.Cmd {
	if p.disposed {
		return nil
	}
	switch msg := msg.(type) {
	case presenter.Outcome:
		return p.applyOutcome(msg)
	case tea.WindowSizeMsg:
		l := ui.NewLayoutConfig(msg.Width, msg.Height)
		p.vp.Width, p.vp.Height = l.ContentWidth(), l.ContentHeight()
	case tea.KeyMsg:
		if key.Matches(msg, p.back) {
			return Navigate("#/")
		}
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(msg)
		return cmd
	}
	return nil
}

func (p *StoryDetail) View() string {
	switch {
	case p.story == nil && p.errText == "":
		return p.Render()
	case p.vp.Height <= 0:
		if p.story != nil {
			return p.renderStory()
		}
		return p.renderError()
	default:
		return p.vp.View()
	}
}
