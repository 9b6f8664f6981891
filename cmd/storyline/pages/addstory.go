package pages

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"storyline/internal/api"
	"storyline/internal/logging"
	"storyline/internal/presenter"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Default marker position offered by ctrl+l (Jember, East Java).
const (
	defaultLat = -8.1689
	defaultLon = 113.7022
)

const (
	addDescription = iota
	addPhoto
	addLat
	addLon
	addFieldCount
)

type addStoryKeys struct {
	Next, Prev, Submit, Guest, Locate key.Binding
}

// AddStory submits a new story with an optional location.
type AddStory struct {
	base
	keys      addStoryKeys
	desc      textarea.Model
	inputs    [addFieldCount]textinput.Model // addDescription slot unused
	focus     int
	presenter *presenter.AddStory

	photo   io.ReadCloser // open while a submission is in flight
	busy    bool
	errText string
}

func NewAddStory(deps *Deps) *AddStory {
	p := &AddStory{
		base: newBase("add-story", deps),
		keys: addStoryKeys{
			Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
			Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "add story")),
			Guest:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "add as guest")),
			Locate: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "default location")),
		},
		desc: textarea.New(),
	}
	p.desc.Placeholder = "What happened?"
	p.desc.SetWidth(60)
	p.desc.SetHeight(4)
	p.desc.ShowLineNumbers = false

	for i, ph := range map[int]string{addPhoto: "/path/to/photo.jpg", addLat: "-8.168900", addLon: "113.702200"} {
		ti := textinput.New()
		ti.Placeholder = ph
		ti.Width = 40
		p.inputs[i] = ti
	}
	p.presenter = presenter.NewAddStory(p, deps.API)
	return p
}

func (p *AddStory) Render() string { return p.render() }

func (p *AddStory) render() string {
	s := p.styles()
	label := func(text string) string { return s.Label.Render(text + ":") }

	rows := []string{
		s.Title.Render("Add New Story"),
		label("Description"),
		p.desc.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, label("Photo"), p.inputs[addPhoto].View()),
		lipgloss.JoinHorizontal(lipgloss.Top, label("Latitude"), p.inputs[addLat].View()),
		lipgloss.JoinHorizontal(lipgloss.Top, label("Longitude"), p.inputs[addLon].View()),
		"",
	}
	if p.errText != "" {
		rows = append(rows, s.Error.Render(p.errText))
	}
	if p.busy {
		rows = append(rows, s.Muted.Render("Uploading..."))
	}
	rows = append(rows, s.Muted.Render("Location is optional. ctrl+l fills a default position."))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (p *AddStory) AfterRender(ctx context.Context) tea.Cmd {
	p.start(ctx, p.keys.Next, p.keys.Prev, p.keys.Submit, p.keys.Guest, p.keys.Locate)
	p.setFocus(addDescription)
	return nil
}

func (p *AddStory) setFocus(i int) tea.Cmd {
	p.focus = (i + addFieldCount) % addFieldCount
	p.desc.Blur()
	for j := addPhoto; j < addFieldCount; j++ {
		p.inputs[j].Blur()
	}
	if p.focus == addDescription {
		return p.desc.Focus()
	}
	return p.inputs[p.focus].Focus()
}

// SetDraft fills the form.
func (p *AddStory) SetDraft(description, photoPath, lat, lon string) {
	p.desc.SetValue(description)
	p.inputs[addPhoto].SetValue(photoPath)
	p.inputs[addLat].SetValue(lat)
	p.inputs[addLon].SetValue(lon)
}

func parseCoord(v, name string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number.", name)
	}
	return &f, nil
}

// Submit builds the draft and hands it to the presenter. The photo file is
// opened here and owned by the page until the result arrives or the page
// is disposed.
func (p *AddStory) Submit(asGuest bool) tea.Cmd {
	if p.busy {
		return nil
	}
	lat, err := parseCoord(p.inputs[addLat].Value(), "Latitude")
	if err != nil {
		p.errText = err.Error()
		return nil
	}
	lon, err := parseCoord(p.inputs[addLon].Value(), "Longitude")
	if err != nil {
		p.errText = err.Error()
		return nil
	}
	if (lat == nil) != (lon == nil) {
		p.errText = "Provide both latitude and longitude, or neither."
		return nil
	}

	draft := api.StoryDraft{Description: p.desc.Value(), Lat: lat, Lon: lon}
	if path := strings.TrimSpace(p.inputs[addPhoto].Value()); path != "" && strings.TrimSpace(draft.Description) != "" {
		f, err := p.deps.open(path)
		if err != nil {
			p.errText = fmt.Sprintf("Could not open photo: %v", err)
			return nil
		}
		p.photo = f
		p.own(f)
		draft.Photo = f
		draft.PhotoName = filepath.Base(path)
	}

	p.errText = ""
	p.busy = draft.Photo != nil
	logging.PagesDebug("add-story: submitting (guest=%v, located=%v)", asGuest, lat != nil)
	return p.presenter.AddStory(p.ctx, draft, asGuest)
}

func (p *AddStory) closePhoto() {
	if p.photo != nil {
		p.release(p.photo)
		p.photo = nil
	}
}

func (p *AddStory) OnAddStorySuccess(asGuest bool) {
	p.busy = false
	p.closePhoto()
	msg := "Story added successfully!"
	if asGuest {
		msg = "Story added as guest successfully!"
	}
	p.emit(Alert(msg, "#/"))
}

func (p *AddStory) OnAddStoryFailure(message string) {
	p.busy = false
	p.closePhoto()
	p.emit(Alert("Failed to add story: "+message, ""))
}

// OnAddStoryInvalid shows the validation message inline; nothing was sent.
func (p *AddStory) OnAddStoryInvalid(message string) {
	p.busy = false
	p.closePhoto()
	p.errText = message
}

func (p *AddStory) Update(msg tea.Msg) tea.Cmd {
	if p.disposed {
		return nil
	}
	switch msg := msg.(type) {
	case presenter.Outcome:
		return p.applyOutcome(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Submit):
			return p.Submit(false)
		case key.Matches(msg, p.keys.Guest):
			return p.Submit(true)
		case key.Matches(msg, p.keys.Locate):
			p.inputs[addLat].SetValue(strconv.FormatFloat(defaultLat, 'f', 6, 64))
			p.inputs[addLon].SetValue(strconv.FormatFloat(defaultLon, 'f', 6, 64))
			return nil
		case key.Matches(msg, p.keys.Next):
			return p.setFocus(p.focus + 1)
		case key.Matches(msg, p.keys.Prev):
			return p.setFocus(p.focus - 1)
		}
	}

	var cmd tea.Cmd
	if p.focus == addDescription {
		p.desc, cmd = p.desc.Update(msg)
	} else {
		p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	}
	return cmd
}

func (p *AddStory) View() string { return p.render() }
