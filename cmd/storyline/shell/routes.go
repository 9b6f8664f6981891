package shell

import (
	"errors"

	"storyline/cmd/storyline/pages"
	"storyline/internal/router"
	"storyline/internal/session"
)

// LoginRequiredMessage is shown when a protected location is opened without a session.
const LoginRequiredMessage = "You need to be logged in to access this page."

// ErrUnauthenticated is returned by Gate for a protected pattern without a session.
var ErrUnauthenticated = errors.New(LoginRequiredMessage)

// protected lists the patterns that need a session token.
var protected = map[string]bool{
	"/add-story":     true,
	"/stories/:id":   true,
	"/notifications": true,
}

// Protected reports whether pattern requires a session.
func Protected(pattern string) bool { return protected[pattern] }

// Gate decides whether s may open a route with pattern.
func Gate(pattern string, s session.Session) error {
	if Protected(pattern) && !s.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// Routes builds the route table. Every factory shares deps.
func Routes(deps *pages.Deps) *router.Table[pages.Page] {
	static := func(f func(*pages.Deps) pages.Page) func(router.ActiveRoute) pages.Page {
		return func(router.ActiveRoute) pages.Page { return f(deps) }
	}
	return router.MustTable(
		router.Route[pages.Page]{Pattern: "/", Factory: static(func(d *pages.Deps) pages.Page { return pages.NewHome(d) })},
		router.Route[pages.Page]{Pattern: "/about", Factory: static(func(d *pages.Deps) pages.Page { return pages.NewAbout(d) })},
		router.Route[pages.Page]{Pattern: "/login", Factory: static(func(d *pages.Deps) pages.Page { return pages.NewLogin(d) })},
		router.Route[pages.Page]{Pattern: "/register", Factory: static(func(d *pages.Deps) pages.Page { return pages.NewRegister(d) })},
		router.Route[pages.Page]{Pattern: "/add-story", Factory: static(func(d *pages.Deps) pages.Page { return pages.NewAddStory(d) })},
		router.Route[pages.Page]{Pattern: "/notifications", Factory: static(func(d *pages.Deps) pages.Page { return pages.NewNotifications(d) })},
		router.Route[pages.Page]{Pattern: "/stories/:id", Factory: func(r router.ActiveRoute) pages.Page { return pages.NewStoryDetail(deps, r) }},
	)
}
