package presenter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storyline/internal/api"
	"storyline/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recorder collects the callbacks a presenter invokes.
type recorder struct {
	calls    []string
	stories  []api.Story
	story    api.Story
	login    api.LoginResult
	messages []string
	guest    bool
	endpoint string
}

func (r *recorder) ShowStories(s []api.Story) { r.calls = append(r.calls, "stories"); r.stories = s }
func (r *recorder) ShowStory(s api.Story) { r.calls = append(r.calls, "story"); r.story = s }
func (r *recorder) ShowError(m string) { r.fail("error", m) }
func (r *recorder) OnLoginSuccess(l api.LoginResult) {
	r.calls = append(r.calls, "login")
	r.login = l
}
func (r *recorder) OnLoginFailure(m string) { r.fail("loginFailure", m) }
func (r *recorder) OnRegisterSuccess() { r.calls = append(r.calls, "registered") }
func (r *recorder) OnRegisterFailure(m string) { r.fail("registerFailure", m) }
func (r *recorder) OnAddStorySuccess(g bool) {
	r.calls = append(r.calls, "added")
	r.guest = g
}
func (r *recorder) OnAddStoryFailure(m string) { r.fail("addFailure", m) }
func (r *recorder) OnAddStoryInvalid(m string) { r.fail("invalid", m) }
func (r *recorder) OnSubscribed(ep string) {
	r.calls = append(r.calls, "subscribed")
	r.endpoint = ep
}
func (r *recorder) OnUnsubscribed(ep string) {
	r.calls = append(r.calls, "unsubscribed")
	r.endpoint = ep
}
func (r *recorder) OnPushFailure(m string) { r.fail("pushFailure", m) }

func (r *recorder) fail(name, m string) {
	r.calls = append(r.calls, name)
	r.messages = append(r.messages, m)
}

// fakeAPI implements every presenter model interface.
type fakeAPI struct {
	calls   []string
	err     error
	stories []api.Story
	login   api.LoginResult
}

func (f *fakeAPI) ListStories(_ context.Context, q api.ListQuery) ([]api.Story, error) {
	f.calls = append(f.calls, "list")
	return f.stories, f.err
}
func (f *fakeAPI) GetStory(_ context.Context, id string) (api.Story, error) {
	f.calls = append(f.calls, "get:"+id)
	if f.err != nil {
		return api.Story{}, f.err
	}
	return api.Story{ID: id, Name: "Ann"}, nil
}
func (f *fakeAPI) Login(_ context.Context, cr api.Credentials) (api.LoginResult, error) {
	f.calls = append(f.calls, "login:"+cr.Email)
	return f.login, f.err
}
func (f *fakeAPI) Register(_ context.Context, r api.Registration) (api.Ack, error) {
	f.calls = append(f.calls, "register:"+r.Email)
	return api.Ack{}, f.err
}
func (f *fakeAPI) CreateStory(_ context.Context, d api.StoryDraft) (api.Ack, error) {
	f.calls = append(f.calls, "create")
	return api.Ack{}, f.err
}
func (f *fakeAPI) CreateStoryAsGuest(_ context.Context, d api.StoryDraft) (api.Ack, error) {
	f.calls = append(f.calls, "createGuest")
	return api.Ack{}, f.err
}
func (f *fakeAPI) SubscribePush(_ context.Context, s api.PushSubscription) (api.Ack, error) {
	f.calls = append(f.calls, "subscribe")
	return api.Ack{}, f.err
}
func (f *fakeAPI) UnsubscribePush(_ context.Context, ep string) (api.Ack, error) {
	f.calls = append(f.calls, "unsubscribe")
	return api.Ack{}, f.err
}

func remote(msg string) error {
	return &api.Error{Kind: api.KindRemote, Op: "test", Status: 401, Message: msg}
}

// apply runs cmd and applies the resulting Outcome.
func apply(t *testing.T, cmd tea.Cmd) Outcome {
	t.Helper()
	require.NotNil(t, cmd)
	out, ok := cmd().(Outcome)
	require.True(t, ok, "command must resolve to an Outcome")
	out.Apply()
	return out
}

func TestStories_LoadSuccessAndFailure(t *testing.T) {
	view, model := &recorder{}, &fakeAPI{stories: []api.Story{{ID: "1"}, {ID: "2"}}}
	p := NewStories(view, model)

	out := apply(t, p.Load(context.Background(), api.ListQuery{}))
	assert.True(t, out.OK)
	assert.Equal(t, []string{"stories"}, view.calls)
	assert.Len(t, view.stories, 2)

	view2, model2 := &recorder{}, &fakeAPI{err: remote("unauthorized")}
	out = apply(t, NewStories(view2, model2).Load(context.Background(), api.ListQuery{}))
	assert.False(t, out.OK)
	assert.Equal(t, []string{"error"}, view2.calls)
	assert.Equal(t, []string{"unauthorized"}, view2.messages)
}

func TestOutcome_NothingHappensUntilApplied(t *testing.T) {
	view, model := &recorder{}, &fakeAPI{}
	cmd := NewStories(view, model).Load(context.Background(), api.ListQuery{})

	msg := cmd()
	assert.Equal(t, []string{"list"}, model.calls)
	assert.Empty(t, view.calls, "callbacks run only on Apply")

	msg.(Outcome).Apply()
	assert.Equal(t, []string{"stories"}, view.calls)
}

func TestRun_SlowCallIsWarned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.UseLogger(zap.New(core), logging.Options{DebugMode: true})
	prev := SlowCall
	SlowCall = 0
	t.Cleanup(func() {
		SlowCall = prev
		logging.UseLogger(zap.NewNop(), logging.Options{})
	})

	apply(t, NewStories(&recorder{}, &fakeAPI{}).Load(context.Background(), api.ListQuery{}))

	warned := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warned, 1)
	assert.True(t, strings.HasPrefix(warned[0].Message, "listStories took"))

	SlowCall = time.Hour
	apply(t, NewStories(&recorder{}, &fakeAPI{}).Load(context.Background(), api.ListQuery{}))
	assert.Len(t, logs.FilterLevelExact(zapcore.WarnLevel).All(), 1)
}

func TestStory_Load(t *testing.T) {
	view, model := &recorder{}, &fakeAPI{}
	apply(t, NewStory(view, model).Load(context.Background(), "42"))
	assert.Equal(t, "42", view.story.ID)

	view, model = &recorder{}, &fakeAPI{err: remote("Story not found")}
	apply(t, NewStory(view, model).Load(context.Background(), "9"))
	assert.Equal(t, []string{"Failed to fetch story: Story not found"}, view.messages)
}

func TestStory_BlankIDMakesNoRequest(t *testing.T) {
	view, model := &recorder{}, &fakeAPI{}
	apply(t, NewStory(view, model).Load(context.Background(), " "))
	assert.Empty(t, model.calls)
	assert.Equal(t, []string{"Story ID not found in URL."}, view.messages)
}

func TestLogin(t *testing.T) {
	view, model := &recorder{}, &fakeAPI{login: api.LoginResult{Token: "t1", UserID: "u1", Name: "Ann"}}
	apply(t, NewLogin(view, model).Login(context.Background(), api.Credentials{Email: "a@b.com", Password: "secret123"}))
	assert.Equal(t, []string{"login"}, view.calls)
	assert.Equal(t, "Ann", view.login.Name)

	view, model = &recorder{}, &fakeAPI{err: remote("Invalid password")}
	apply(t, NewLogin(view, model).Login(context.Background(), api.Credentials{Email: "a@b.com"}))
	assert.Equal(t, []string{"loginFailure"}, view.calls)
	assert.Equal(t, []string{"Invalid password"}, view.messages)
}

func TestRegister(t *testing.T) {
	view, model := &recorder{}, &fakeAPI{}
	apply(t, NewRegister(view, model).Register(context.Background(), api.Registration{Email: "a@b.com"}))
	assert.Equal(t, []string{"registered"}, view.calls)
	assert.Equal(t, []string{"register:a@b.com"}, model.calls)

	view, model = &recorder{}, &fakeAPI{err: errors.New("plain failure")}
	apply(t, NewRegister(view, model).Register(context.Background(), api.Registration{}))
	assert.Equal(t, []string{"plain failure"}, view.messages)
}

func TestAddStory_InvalidDraftNeverCallsAPI(t *testing.T) {
	drafts := []api.StoryDraft{
		{Description: "", Photo: strings.NewReader("x")},
		{Description: "text"},
		{},
	}
	for _, d := range drafts {
		for _, guest := range []bool{false, true} {
			view, model := &recorder{}, &fakeAPI{}
			apply(t, NewAddStory(view, model).AddStory(context.Background(), d, guest))
			assert.Empty(t, model.calls)
			assert.Equal(t, []string{"invalid"}, view.calls)
			assert.Equal(t, []string{api.DraftIncompleteMessage}, view.messages)
		}
	}
}

func TestAddStory_RoutesByGuestFlag(t *testing.T) {
	d := api.StoryDraft{Description: "sunset", Photo: strings.NewReader("x")}

	view, model := &recorder{}, &fakeAPI{}
	apply(t, NewAddStory(view, model).AddStory(context.Background(), d, false))
	assert.Equal(t, []string{"create"}, model.calls)
	assert.False(t, view.guest)

	view, model = &recorder{}, &fakeAPI{}
	apply(t, NewAddStory(view, model).AddStory(context.Background(), d, true))
	assert.Equal(t, []string{"createGuest"}, model.calls)
	assert.True(t, view.guest)

	view, model = &recorder{}, &fakeAPI{err: remote("Payload content length greater than maximum allowed")}
	apply(t, NewAddStory(view, model).AddStory(context.Background(), d, false))
	assert.Equal(t, []string{"addFailure"}, view.calls)
}

func TestPush(t *testing.T) {
	view, model := &recorder{}, &fakeAPI{}
	p := NewPush(view, model)

	apply(t, p.Subscribe(context.Background(), api.PushSubscription{Endpoint: "https://push/1"}))
	assert.Equal(t, "https://push/1", view.endpoint)

	apply(t, p.Unsubscribe(context.Background(), "https://push/1"))
	assert.Equal(t, []string{"subscribed", "unsubscribed"}, view.calls)
	assert.Equal(t, []string{"subscribe", "unsubscribe"}, model.calls)

	view, model = &recorder{}, &fakeAPI{}
	p = NewPush(view, model)
	apply(t, p.Unsubscribe(context.Background(), ""))
	apply(t, p.Subscribe(context.Background(), api.PushSubscription{}))
	assert.Empty(t, model.calls)
	assert.Equal(t, []string{"pushFailure", "pushFailure"}, view.calls)
}
