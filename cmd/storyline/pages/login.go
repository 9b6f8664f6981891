package pages

import (
	"context"
	"fmt"
	"strings"

	"storyline/internal/api"
	"storyline/internal/logging"
	"storyline/internal/presenter"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loginEmail = iota
	loginPassword
)

// Login signs the user in and persists the session on success.
type Login struct {
	base
	keys      formKeys
	form      form
	presenter *presenter.Login
	busy      bool
	errText   string
}

func NewLogin(deps *Deps) *Login {
	p := &Login{
		base: newBase("login", deps),
		keys: newFormKeys("login"),
		form: form{fields: []field{
			newField("Email", "you@example.com", 254),
			passwordField("Password"),
		}},
	}
	p.presenter = presenter.NewLogin(p, deps.API)
	return p
}

func (p *Login) Render() string {
	return p.render()
}

func (p *Login) render() string {
	s := p.styles()
	var b strings.Builder
	b.WriteString(s.Title.Render("Login to your Account"))
	b.WriteString("\n")
	b.WriteString(p.form.view(s))
	b.WriteString("\n\n")
	if p.errText != "" {
		b.WriteString(s.Error.Render(p.errText))
		b.WriteString("\n")
	}
	if p.busy {
		b.WriteString(s.Muted.Render("Signing in..."))
		b.WriteString("\n")
	}
	b.WriteString(s.Muted.Render("Don't have an account? Register from the menu."))
	return b.String()
}

func (p *Login) AfterRender(ctx context.Context) tea.Cmd {
	p.start(ctx, p.keys.Next, p.keys.Prev, p.keys.Submit)
	p.form.focusField(loginEmail)
	return nil
}

// Submit sends the form through the presenter.
func (p *Login) Submit() tea.Cmd {
	email, password := p.form.value(loginEmail), p.form.raw(loginPassword)
	if email == "" || password == "" {
		p.errText = "Email and password are required."
		return nil
	}
	p.errText = ""
	p.busy = true
	return p.presenter.Login(p.ctx, api.Credentials{Email: email, Password: password})
}

// OnLoginSuccess persists the session, then goes home.
func (p *Login) OnLoginSuccess(r api.LoginResult) {
	p.busy = false
	if err := p.deps.Session.Set(r.Token, r.UserID, r.Name); err != nil {
		logging.Get(logging.CategoryPages).Error("login: persisting session failed: %v", err)
		p.emit(Alert(fmt.Sprintf("Login failed: %v", err), ""))
		return
	}
	p.emit(Alert(fmt.Sprintf("Welcome, %s!", r.Name), "#/"))
}

func (p *Login) OnLoginFailure(message string) {
	p.busy = false
	p.emit(Alert("Login failed: "+message, ""))
}

func (p *Login) Update(msg tea.Msg) tea.Cmd {
	if p.disposed {
		return nil
	}
	switch msg := msg.(type) {
	case presenter.Outcome:
		return p.applyOutcome(msg)
	case tea.KeyMsg:
		if key.Matches(msg, p.keys.Submit) {
			if p.busy {
				return nil
			}
			return p.Submit()
		}
	}
	return p.form.update(msg, p.keys)
}

// SetCredentials fills the form.
func (p *Login) SetCredentials(email, password string) {
	p.form.set(loginEmail, email)
	p.form.set(loginPassword, password)
}

func (p *Login) View() string { return p.render() }
