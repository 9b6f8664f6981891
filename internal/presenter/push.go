package presenter

import (
	"context"
	"strings"

	"storyline/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// PushSubscriber forwards push subscriptions to the API.
type PushSubscriber interface {
	SubscribePush(ctx context.Context, sub api.PushSubscription) (api.Ack, error)
	UnsubscribePush(ctx context.Context, endpoint string) (api.Ack, error)
}

type PushView interface {
	OnSubscribed(endpoint string)
	OnUnsubscribed(endpoint string)
	OnPushFailure(message string)
}

// Push manages the push subscription pass-through.
type Push struct {
	view  PushView
	model PushSubscriber
}

func NewPush(view PushView, model PushSubscriber) *Push {
	return &Push{view: view, model: model}
}

func (p *Push) Subscribe(ctx context.Context, sub api.PushSubscription) tea.Cmd {
	if strings.TrimSpace(sub.Endpoint) == "" {
		return immediate("subscribePush", "Push subscription has no endpoint.", p.view.OnPushFailure)
	}
	return run(ctx, "subscribePush",
		func(ctx context.Context) (api.Ack, error) { return p.model.SubscribePush(ctx, sub) },
		func(api.Ack) { p.view.OnSubscribed(sub.Endpoint) },
		p.view.OnPushFailure,
	)
}

func (p *Push) Unsubscribe(ctx context.Context, endpoint string) tea.Cmd {
	if strings.TrimSpace(endpoint) == "" {
		return immediate("unsubscribePush", "No active push subscription found.", p.view.OnPushFailure)
	}
	return run(ctx, "unsubscribePush",
		func(ctx context.Context) (api.Ack, error) { return p.model.UnsubscribePush(ctx, endpoint) },
		func(api.Ack) { p.view.OnUnsubscribed(endpoint) },
		p.view.OnPushFailure,
	)
}
