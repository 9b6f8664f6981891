package presenter

import (
	"context"
	"strings"

	"storyline/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// StoryLister is the part of the API client the story list needs.
type StoryLister interface {
	ListStories(ctx context.Context, q api.ListQuery) ([]api.Story, error)
}

// StoriesView receives the story list.
type StoriesView interface {
	ShowStories(stories []api.Story)
	ShowError(message string)
}

// Stories loads the home page list.
type Stories struct {
	view  StoriesView
	model StoryLister
}

func NewStories(view StoriesView, model StoryLister) *Stories {
	return &Stories{view: view, model: model}
}

func (p *Stories) Load(ctx context.Context, q api.ListQuery) tea.Cmd {
	return run(ctx, "listStories",
		func(ctx context.Context) ([]api.Story, error) { return p.model.ListStories(ctx, q) },
		p.view.ShowStories,
		p.view.ShowError,
	)
}

// StoryGetter is the part of the API client the detail page needs.
type StoryGetter interface {
	GetStory(ctx context.Context, id string) (api.Story, error)
}

// StoryView receives one story.
type StoryView interface {
	ShowStory(story api.Story)
	ShowError(message string)
}

// Story loads a single story.
type Story struct {
	view  StoryView
	model StoryGetter
}

func NewStory(view StoryView, model StoryGetter) *Story {
	return &Story{view: view, model: model}
}

// Load fetches the story. A blank id fails without a request.
func (p *Story) Load(ctx context.Context, id string) tea.Cmd {
	if strings.TrimSpace(id) == "" {
		return immediate("getStory", "Story ID not found in URL.", p.view.ShowError)
	}
	return run(ctx, "getStory",
		func(ctx context.Context) (api.Story, error) { return p.model.GetStory(ctx, id) },
		p.view.ShowStory,
		func(msg string) { p.view.ShowError("Failed to fetch story: " + msg) },
	)
}
