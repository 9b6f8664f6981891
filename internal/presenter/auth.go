package presenter

import (
	"context"

	"storyline/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// Authenticator performs the login request.
type Authenticator interface {
	Login(ctx context.Context, cr api.Credentials) (api.LoginResult, error)
}

// LoginView receives the login result. Persisting the session is the
// view's decision, made in OnLoginSuccess.
type LoginView interface {
	OnLoginSuccess(result api.LoginResult)
	OnLoginFailure(message string)
}

type Login struct {
	view  LoginView
	model Authenticator
}

func NewLogin(view LoginView, model Authenticator) *Login {
	return &Login{view: view, model: model}
}

func (p *Login) Login(ctx context.Context, cr api.Credentials) tea.Cmd {
	return run(ctx, "login",
		func(ctx context.Context) (api.LoginResult, error) { return p.model.Login(ctx, cr) },
		p.view.OnLoginSuccess,
		p.view.OnLoginFailure,
	)
}

// Registrar performs account registration.
type Registrar interface {
	Register(ctx context.Context, r api.Registration) (api.Ack, error)
}

type RegisterView interface {
	OnRegisterSuccess()
	OnRegisterFailure(message string)
}

type Register struct {
	view  RegisterView
	model Registrar
}

func NewRegister(view RegisterView, model Registrar) *Register {
	return &Register{view: view, model: model}
}

func (p *Register) Register(ctx context.Context, r api.Registration) tea.Cmd {
	return run(ctx, "register",
		func(ctx context.Context) (api.Ack, error) { return p.model.Register(ctx, r) },
		func(api.Ack) { p.view.OnRegisterSuccess() },
		p.view.OnRegisterFailure,
	)
}
