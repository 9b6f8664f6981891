package presenter

import (
	"context"

	"storyline/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// StoryCreator submits stories, with or without the session token.
type StoryCreator interface {
	CreateStory(ctx context.Context, d api.StoryDraft) (api.Ack, error)
	CreateStoryAsGuest(ctx context.Context, d api.StoryDraft) (api.Ack, error)
}

// AddStoryView receives the submission result. OnAddStoryInvalid is called
// for drafts rejected before any request was made.
type AddStoryView interface {
	OnAddStorySuccess(asGuest bool)
	OnAddStoryFailure(message string)
	OnAddStoryInvalid(message string)
}

type AddStory struct {
	view  AddStoryView
	model StoryCreator
}

func NewAddStory(view AddStoryView, model StoryCreator) *AddStory {
	return &AddStory{view: view, model: model}
}

// AddStory validates the draft, then submits it. An incomplete draft never
// reaches the network.
func (p *AddStory) AddStory(ctx context.Context, d api.StoryDraft, asGuest bool) tea.Cmd {
	if err := d.Validate(); err != nil {
		return immediate("addStory", api.Message(err), p.view.OnAddStoryInvalid)
	}
	create := p.model.CreateStory
	op := "createStory"
	if asGuest {
		create = p.model.CreateStoryAsGuest
		op = "createStoryAsGuest"
	}
	return run(ctx, op,
		func(ctx context.Context) (api.Ack, error) { return create(ctx, d) },
		func(api.Ack) { p.view.OnAddStorySuccess(asGuest) },
		p.view.OnAddStoryFailure,
	)
}
