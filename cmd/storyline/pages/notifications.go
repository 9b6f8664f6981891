package pages

import (
	"context"
	"strings"

	"storyline/internal/api"
	"storyline/internal/logging"
	"storyline/internal/presenter"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type notifyKeys struct {
	Subscribe, Unsubscribe key.Binding
}

// Notifications forwards a push subscription file to the API and removes it again.
type Notifications struct {
	base
	keys      notifyKeys
	file      textinput.Model
	presenter *presenter.Push

	endpoint string
	status   string
	busy     bool
}

func NewNotifications(deps *Deps) *Notifications {
	p := &Notifications{
		base: newBase("notifications", deps),
		keys: notifyKeys{
			Subscribe:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "subscribe")),
			Unsubscribe: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "unsubscribe")),
		},
		file: textinput.New(),
	}
	p.file.Width = 50
	p.file.SetValue(deps.Settings.SubscriptionFile)
	p.presenter = presenter.NewPush(p, deps.API)
	return p
}

func (p *Notifications) Render() string { return p.render() }

func (p *Notifications) render() string {
	s := p.styles()
	current := s.Muted.Render("none")
	if p.endpoint != "" {
		current = s.Link.Render(p.endpoint)
	}
	rows := []string{
		s.Title.Render("Push Notifications"),
		lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render("Subscribed:"), current),
		lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render("File:"), p.file.View()),
		"",
	}
	if p.status != "" {
		rows = append(rows, s.Info.Render(p.status))
	}
	rows = append(rows, s.Muted.Render("The file holds a Web Push subscription JSON (endpoint and keys)."))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// AfterRender reads the stored endpoint. Nothing remote is loaded.
func (p *Notifications) AfterRender(ctx context.Context) tea.Cmd {
	p.start(ctx, p.keys.Subscribe, p.keys.Unsubscribe)
	ep, err := p.deps.Session.PushEndpoint()
	if err != nil {
		logging.Get(logging.CategoryPages).Warn("notifications: reading endpoint: %v", err)
	}
	p.endpoint = ep
	p.file.Focus()
	return nil
}

func (p *Notifications) OnSubscribed(endpoint string) {
	p.busy = false
	p.endpoint = endpoint
	if err := p.deps.Session.SetPushEndpoint(endpoint); err != nil {
		p.status = "Subscribed, but the endpoint could not be saved locally."
		return
	}
	p.status = "Successfully subscribed to push notifications."
}

func (p *Notifications) OnUnsubscribed(string) {
	p.busy = false
	p.endpoint = ""
	if err := p.deps.Session.SetPushEndpoint(""); err != nil {
		logging.Get(logging.CategoryPages).Warn("notifications: clearing endpoint: %v", err)
		p.status = "Unsubscribed, but the local endpoint could not be cleared."
		return
	}
	p.status = "Successfully unsubscribed from push notifications."
}

func (p *Notifications) OnPushFailure(message string) {
	p.busy = false
	p.emit(Alert("Push subscription failed: "+message, ""))
}

func (p *Notifications) Update(msg tea.Msg) tea.Cmd {
	if p.disposed {
		return nil
	}
	switch msg := msg.(type) {
	case presenter.Outcome:
		return p.applyOutcome(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Subscribe):
			if p.busy {
				return nil
			}
			sub, err := api.LoadSubscription(strings.TrimSpace(p.file.Value()))
			if err != nil {
				p.status = err.Error()
				return nil
			}
			p.busy = true
			return p.presenter.Subscribe(p.ctx, sub)
		case key.Matches(msg, p.keys.Unsubscribe):
			if p.busy {
				return nil
			}
			p.busy = true
			return p.presenter.Unsubscribe(p.ctx, p.endpoint)
		}
	}
	var cmd tea.Cmd
	p.file, cmd = p.file.Update(msg)
	return cmd
}

func (p *Notifications) View() string { return p.render() }
