// Package presenter mediates between pages and the API client.
//
// A presenter holds its page as a callback target and the API client as its
// data source. Each verb returns a tea.Cmd that performs the request off the
// UI loop and yields an Outcome. The page applies the Outcome on the UI loop,
// which invokes exactly one callback: success with the payload or failure
// with the message string. Pages never see error values.
package presenter

import (
	"context"
	"time"

	"storyline/internal/api"
	"storyline/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Outcome is a finished presenter call waiting to be applied on the UI loop.
type Outcome struct {
	Op    string
	OK    bool
	apply func()
}

// Apply invokes the callback chosen when the call finished.
func (o Outcome) Apply() {
	if o.apply != nil {
		o.apply()
	}
}

// SlowCall is the duration after which a finished call is logged as a warning.
var SlowCall = 5 * time.Second

// run wraps call into a command resolving to exactly one of ok or fail.
func run[T any](ctx context.Context, op string, call func(context.Context) (T, error), ok func(T), fail func(string)) tea.Cmd {
	return func() tea.Msg {
		timer := logging.StartTimer(logging.CategoryPresenter, op)
		v, err := call(ctx)
		timer.StopWithThreshold(SlowCall)
		if err != nil {
			msg := api.Message(err)
			logging.PresenterDebug("%s failed: %s", op, msg)
			return Outcome{Op: op, apply: func() { fail(msg) }}
		}
		return Outcome{Op: op, OK: true, apply: func() { ok(v) }}
	}
}

// immediate resolves to fail(message) without doing any I/O.
func immediate(op, message string, fail func(string)) tea.Cmd {
	return func() tea.Msg {
		return Outcome{Op: op, apply: func() { fail(message) }}
	}
}
