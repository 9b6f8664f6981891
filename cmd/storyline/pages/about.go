package pages

import (
	"context"

	"storyline/cmd/storyline/ui"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const aboutMarkdown = `# About Storyline

Storyline is a terminal client for the Story API. Share a moment with a
photo, a few words and, if you like, the place it happened.

## What you can do

- Browse everyone's stories, newest first, and filter to stories with a location.
- Open a story to read it in full and get a map link for its coordinates.
- Post a story as yourself, or as a guest without signing in.
- Forward a push subscription so new stories reach your devices.

## Keys

| Key | Action |
|---|---|
| esc | switch between the menu and the page |
| ctrl+g | go to a location such as ` + "`#/stories/<id>`" + ` |
| ctrl+c | quit |
`

// About is a static page rendered with glamour.
type About struct {
	base
	vp   viewport.Model
	body string
}

func NewAbout(deps *Deps) *About {
	return &About{base: newBase("about", deps)}
}

func (p *About) Render() string {
	p.body = ui.Markdown(aboutMarkdown, p.deps.Settings.MarkdownStyle, p.wrapWidth())
	return p.body
}

func (p *About) AfterRender(ctx context.Context) tea.Cmd {
	km := viewport.DefaultKeyMap()
	p.start(ctx, km.Up, km.Down, km.PageUp, km.PageDown)
	p.vp = viewport.New(p.contentWidth(), p.deps.Layout.ContentHeight())
	p.vp.SetContent(p.body)
	return nil
}

func (p *About) Update(msg tea.Msg) tea.Cmd {
	if p.disposed {
		return nil
	}
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		l := ui.NewLayoutConfig(ws.Width, ws.Height)
		p.vp.Width, p.vp.Height = l.ContentWidth(), l.ContentHeight()
		return nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		for _, b := range p.bindings {
			if key.Matches(km, b) {
				var cmd tea.Cmd
				p.vp, cmd = p.vp.Update(msg)
				return cmd
			}
		}
	}
	return nil
}

func (p *About) View() string {
	if p.vp.Height <= 0 {
		return p.body
	}
	return p.vp.View()
}
