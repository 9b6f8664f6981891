package pages

import (
	"context"
	"strings"
	"unicode/utf8"

	"storyline/internal/api"
	"storyline/internal/presenter"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	registerName = iota
	registerEmail
	registerPassword
)

const minPasswordLength = 8

// Register creates an account, then sends the user to the login page.
type Register struct {
	base
	keys      formKeys
	form      form
	presenter *presenter.Register
	busy      bool
	errText   string
}

func NewRegister(deps *Deps) *Register {
	p := &Register{
		base: newBase("register", deps),
		keys: newFormKeys("register"),
		form: form{fields: []field{
			newField("Name", "Your name", 100),
			newField("Email", "you@example.com", 254),
			passwordField("Password"),
		}},
	}
	p.presenter = presenter.NewRegister(p, deps.API)
	return p
}

func (p *Register) Render() string { return p.render() }

func (p *Register) render() string {
	s := p.styles()
	var b strings.Builder
	b.WriteString(s.Title.Render("Register Account"))
	b.WriteString("\n")
	b.WriteString(p.form.view(s))
	b.WriteString("\n\n")
	if p.errText != "" {
		b.WriteString(s.Error.Render(p.errText))
		b.WriteString("\n")
	}
	if p.busy {
		b.WriteString(s.Muted.Render("Creating account..."))
		b.WriteString("\n")
	}
	b.WriteString(s.Muted.Render("Already have an account? Login from the menu."))
	return b.String()
}

func (p *Register) AfterRender(ctx context.Context) tea.Cmd {
	p.start(ctx, p.keys.Next, p.keys.Prev, p.keys.Submit)
	p.form.focusField(registerName)
	return nil
}

func (p *Register) Submit() tea.Cmd {
	r := api.Registration{
		Name:     p.form.value(registerName),
		Email:    p.form.value(registerEmail),
		Password: p.form.raw(registerPassword),
	}
	switch {
	case r.Name == "" || r.Email == "" || r.Password == "":
		p.errText = "Name, email and password are required."
		return nil
	case utf8.RuneCountInString(r.Password) < minPasswordLength:
		p.errText = "Password must be at least 8 characters."
		return nil
	}
	p.errText = ""
	p.busy = true
	return p.presenter.Register(p.ctx, r)
}

func (p *Register) OnRegisterSuccess() {
	p.busy = false
	p.emit(Alert("Registration successful! Please login.", "#/login"))
}

func (p *Register) OnRegisterFailure(message string) {
	p.busy = false
	p.emit(Alert("Registration failed: "+message, ""))
}

func (p *Register) Update(msg tea.Msg) tea.Cmd {
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

// SetFields fills the form.
func (p *Register) SetFields(name, email, password string) {
	p.form.set(registerName, name)
	p.form.set(registerEmail, email)
	p.form.set(registerPassword, password)
}

func (p *Register) View() string { return p.render() }
