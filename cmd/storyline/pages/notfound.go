package pages

import (
	"context"

	"storyline/internal/router"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// NotFound is rendered for locations no route matches.
type NotFound struct {
	base
	path string
	home key.Binding
}

func NewNotFound(deps *Deps, route router.ActiveRoute) *NotFound {
	return &NotFound{
		base: newBase("not-found", deps),
		path: route.Path,
		home: key.NewBinding(key.WithKeys("enter", "b"), key.WithHelp("enter", "go home")),
	}
}

func (p *NotFound) Render() string {
	s := p.styles()
	return s.Title.Render("Page not found") + "\n" +
		s.Body.Render("Nothing lives at "+router.Hash(p.path)+".") + "\n\n" +
		s.Muted.Render("Press enter to go back to Home.")
}

func (p *NotFound) AfterRender(ctx context.Context) tea.Cmd {
	p.start(ctx, p.home)
	return nil
}

func (p *NotFound) Update(msg tea.Msg) tea.Cmd {
	if p.disposed {
		return nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, p.home) {
		return Navigate("#/")
	}
	return nil
}

func (p *NotFound) View() string { return p.Render() }
