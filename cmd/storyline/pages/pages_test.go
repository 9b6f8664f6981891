package pages

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"storyline/cmd/storyline/ui"
	"storyline/internal/api"
	"storyline/internal/router"
	"storyline/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome_UnauthorizedShowsLoginHint(t *testing.T) {
	e := newEnv(t)
	e.srv.Fail(http.MethodGet, "/stories", http.StatusUnauthorized, "unauthorized")

	p := NewHome(e.deps)
	assert.Contains(t, p.Render(), "Loading stories...")
	mount(t, p)

	assert.Contains(t, p.View(), "Failed to load stories: unauthorized. Please login.")
}

func TestHome_ListsAndOpensStories(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	e.srv.AddStory(api.Story{ID: "old", Name: "Bob", Description: "<p>first</p>", CreatedAt: fixedNow.Add(-48 * time.Hour)})
	e.srv.AddStory(api.Story{ID: "new", Name: "Cid", Description: "second", Lat: ptr(-8.1689), Lon: ptr(113.7022), CreatedAt: fixedNow})

	p := NewHome(e.deps)
	mount(t, p)

	view := p.View()
	assert.Contains(t, view, "Cid")
	assert.Contains(t, view, "first")
	assert.NotContains(t, view, "<p>")
	assert.Contains(t, view, "Lat -8.168900, Lon 113.702200")
	assert.Contains(t, view, "2 days ago")

	p.Update(keyMsg("down"))
	st, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "old", st.ID)

	msgs := messages(p.Update(keyMsg("enter")))
	assert.Equal(t, []tea.Msg{NavigateMsg{Hash: "#/stories/old"}}, msgs)
}

func TestHome_EmptyList(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)

	p := NewHome(e.deps)
	mount(t, p)
	assert.Contains(t, p.View(), "No stories available.")

	// A short page means there is no next page.
	assert.Nil(t, p.Update(keyMsg("n")))
}

func TestHome_PagingAndLocationFilter(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	e.deps.Settings.PageSize = 1
	e.srv.AddStory(api.Story{ID: "a", Name: "A"})
	e.srv.AddStory(api.Story{ID: "b", Name: "B", Lat: ptr(1), Lon: ptr(2)})

	p := NewHome(e.deps)
	mount(t, p)
	st, _ := p.Selected()
	assert.Equal(t, "b", st.ID)

	deliver(t, p, p.Update(keyMsg("n")))
	st, _ = p.Selected()
	assert.Equal(t, "a", st.ID)
	assert.Contains(t, p.View(), "Page 2")

	deliver(t, p, p.Update(keyMsg("l")))
	st, _ = p.Selected()
	assert.Equal(t, "b", st.ID)
	assert.Contains(t, p.View(), "with location")
}

func TestHome_OlderListResultIsDropped(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	e.srv.AddStory(api.Story{ID: "plain", Name: "Plain"})
	e.srv.AddStory(api.Story{ID: "located", Name: "Located", Lat: ptr(1), Lon: ptr(2)})

	p := NewHome(e.deps)
	mount(t, p)

	unfiltered := p.Update(keyMsg("r"))
	filtered := p.Update(keyMsg("l"))
	require.NotNil(t, unfiltered)
	require.NotNil(t, filtered)

	newer, older := filtered(), unfiltered()
	p.Update(newer)
	assert.Nil(t, p.Update(older))

	view := p.View()
	assert.Contains(t, view, "with location")
	assert.Contains(t, view, "Located")
	assert.NotContains(t, view, "Plain")
}

func TestLogin_PersistsSessionAndGoesHome(t *testing.T) {
	e := newEnv(t)
	e.srv.SetLoginResult(api.LoginResult{Token: "t1", UserID: "u1", Name: "Ann"})

	p := NewLogin(e.deps)
	mount(t, p)
	p.SetCredentials("a@b.com", "secret123")

	msgs := messages(deliver(t, p, p.Update(keyMsg("enter"))))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "Welcome, Ann!", Then: "#/"}}, msgs)

	got, err := e.session.Get()
	require.NoError(t, err)
	assert.Equal(t, session.Session{Token: "t1", UserID: "u1", UserName: "Ann"}, got)
}

func TestLogin_FailureLeavesSessionUnchanged(t *testing.T) {
	e := newEnv(t)
	e.srv.AddUser("Ann", "a@b.com", "secret123")
	require.NoError(t, e.session.Set("prev", "u0", "Zed"))

	p := NewLogin(e.deps)
	mount(t, p)
	p.SetCredentials("a@b.com", "wrong-password")

	msgs := messages(deliver(t, p, p.Submit()))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "Login failed: Invalid password"}}, msgs)

	got, err := e.session.Get()
	require.NoError(t, err)
	assert.Equal(t, session.Session{Token: "prev", UserID: "u0", UserName: "Zed"}, got)
}

func TestLogin_RequiredFields(t *testing.T) {
	e := newEnv(t)
	p := NewLogin(e.deps)
	mount(t, p)

	assert.Nil(t, p.Submit())
	assert.Contains(t, p.View(), "Email and password are required.")
	assert.Empty(t, e.srv.Calls())
}

func TestRegister_SuccessGoesToLogin(t *testing.T) {
	e := newEnv(t)
	p := NewRegister(e.deps)
	mount(t, p)
	p.SetFields("Ann", "a@b.com", "secret123")

	msgs := messages(deliver(t, p, p.Submit()))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "Registration successful! Please login.", Then: "#/login"}}, msgs)
}

func TestRegister_ValidationAndRemoteFailure(t *testing.T) {
	e := newEnv(t)
	p := NewRegister(e.deps)
	mount(t, p)

	p.SetFields("Ann", "a@b.com", "short")
	assert.Nil(t, p.Submit())
	assert.Contains(t, p.View(), "at least 8 characters")
	assert.Empty(t, e.srv.Calls())

	e.srv.AddUser("Ann", "a@b.com", "secret123")
	p.SetFields("Ann", "a@b.com", "secret123")
	msgs := messages(deliver(t, p, p.Submit()))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "Registration failed: Email is already taken"}}, msgs)
}

type trackedFile struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (f *trackedFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *trackedFile) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestAddStory_IncompleteDraftNeverReachesNetwork(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	opened := 0
	e.deps.OpenFile = func(string) (io.ReadCloser, error) {
		opened++
		return &trackedFile{Reader: strings.NewReader("img")}, nil
	}

	p := NewAddStory(e.deps)
	mount(t, p)

	for _, d := range [][2]string{{"", "/tmp/x.jpg"}, {"words", ""}, {"  ", ""}} {
		p.SetDraft(d[0], d[1], "", "")
		for _, k := range []string{"ctrl+s", "ctrl+o"} {
			msgs := messages(p.Update(keyMsg(k)))
			require.Len(t, msgs, 1)
			assert.Nil(t, p.Update(msgs[0]))
			assert.Contains(t, p.View(), api.DraftIncompleteMessage)
		}
	}
	assert.Zero(t, opened)
	assert.Empty(t, e.srv.Calls())
}

func TestAddStory_SubmitsAndReleasesPhoto(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)

	photo := filepath.Join(t.TempDir(), "beach.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("\xff\xd8\xff\xe0jpeg"), 0644))
	var files []*trackedFile
	e.deps.OpenFile = func(path string) (io.ReadCloser, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f := &trackedFile{Reader: strings.NewReader(string(data))}
		files = append(files, f)
		return f, nil
	}

	p := NewAddStory(e.deps)
	mount(t, p)
	p.SetDraft("At the beach", photo, "", "")
	p.Update(keyMsg("ctrl+l"))

	msgs := messages(deliver(t, p, p.Update(keyMsg("ctrl+s"))))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "Story added successfully!", Then: "#/"}}, msgs)
	require.Len(t, files, 1)
	assert.True(t, files[0].isClosed())

	ups := e.srv.Uploads()
	require.Len(t, ups, 1)
	assert.Equal(t, "beach.jpg", ups[0].PhotoName)
	assert.Equal(t, "-8.1689", ups[0].Lat)
	assert.Equal(t, "113.7022", ups[0].Lon)

	msgs = messages(deliver(t, p, p.Update(keyMsg("ctrl+o"))))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "Story added as guest successfully!", Then: "#/"}}, msgs)
	assert.True(t, e.srv.Uploads()[1].Guest)
}

func TestAddStory_CoordinateValidation(t *testing.T) {
	e := newEnv(t)
	p := NewAddStory(e.deps)
	mount(t, p)

	p.SetDraft("text", "photo.jpg", "north", "")
	assert.Nil(t, p.Submit(false))
	assert.Contains(t, p.View(), "Latitude must be a number.")

	p.SetDraft("text", "photo.jpg", "1.5", "")
	assert.Nil(t, p.Submit(false))
	assert.Contains(t, p.View(), "Provide both latitude and longitude")

	e.deps.OpenFile = func(string) (io.ReadCloser, error) { return nil, errors.New("no such file") }
	p.SetDraft("text", "photo.jpg", "", "")
	assert.Nil(t, p.Submit(false))
	assert.Contains(t, p.View(), "Could not open photo: no such file")
}

func TestAddStory_DisposeReleasesPhotoAndCancelsRequest(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	f := &trackedFile{Reader: strings.NewReader("img")}
	e.deps.OpenFile = func(string) (io.ReadCloser, error) { return f, nil }

	p := NewAddStory(e.deps)
	mount(t, p)
	p.SetDraft("text", "photo.jpg", "", "")
	cmd := p.Submit(false)
	require.NotNil(t, cmd)
	assert.False(t, f.isClosed())

	p.Dispose()
	assert.True(t, f.isClosed())
	assert.Nil(t, p.Bindings())

	// The in-flight request observes the cancelled page context and the
	// late result is ignored by the disposed page.
	msg := cmd()
	assert.Nil(t, p.Update(msg))
	assert.Empty(t, e.srv.Uploads())
}

func TestStoryDetail_ShowsStoryAndLocation(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	e.deps.Layout = ui.NewLayoutConfig(200, 60)
	e.srv.AddStory(api.Story{ID: "42", Name: "Ann", Description: "Sunrise", PhotoURL: "https://img/42.jpg", CreatedAt: fixedNow, Lat: ptr(-8.1689), Lon: ptr(113.7022)})
	e.srv.AddStory(api.Story{ID: "43", Name: "Bob", Description: "Rain"})

	p := NewStoryDetail(e.deps, router.ActiveRoute{Path: "/stories/42", Params: map[string]string{"id": "42"}})
	assert.Contains(t, p.Render(), "Loading story...")
	mount(t, p)

	st, ok := p.Story()
	require.True(t, ok)
	assert.Equal(t, "Sunrise", st.Description)
	view := p.View()
	assert.Contains(t, view, "Posted by: Ann")
	assert.Contains(t, view, "Location: Lat -8.1689, Lon 113.7022")
	assert.Contains(t, view, MapURL(-8.1689, 113.7022))

	p2 := NewStoryDetail(e.deps, router.ActiveRoute{Params: map[string]string{"id": "43"}})
	mount(t, p2)
	assert.Contains(t, p2.View(), "Location: Not provided")

	msgs := messages(p2.Update(keyMsg("b")))
	assert.Equal(t, []tea.Msg{NavigateMsg{Hash: "#/"}}, msgs)
}

func TestStoryDetail_Errors(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)

	p := NewStoryDetail(e.deps, router.ActiveRoute{Params: map[string]string{"id": "missing"}})
	mount(t, p)
	assert.Contains(t, p.View(), "Error Loading Story")
	assert.Contains(t, p.View(), "Failed to fetch story: Story not found")

	p = NewStoryDetail(e.deps, router.ActiveRoute{Params: map[string]string{}})
	mount(t, p)
	assert.Contains(t, p.View(), "Story ID not found in URL.")
	assert.Equal(t, 1, len(e.srv.Calls()))
}

func TestNotifications_SubscribeAndUnsubscribe(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	file := filepath.Join(t.TempDir(), "sub.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"endpoint":"https://push.example/1","keys":{"p256dh":"p","auth":"a"}}`), 0644))
	e.deps.Settings.SubscriptionFile = file

	p := NewNotifications(e.deps)
	assert.Nil(t, mount(t, p))
	assert.Contains(t, p.View(), "none")

	deliver(t, p, p.Update(keyMsg("ctrl+s")))
	assert.Contains(t, p.View(), "Successfully subscribed")
	ep, err := e.session.PushEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/1", ep)
	assert.Equal(t, []string{"https://push.example/1"}, e.srv.Subscriptions())

	deliver(t, p, p.Update(keyMsg("ctrl+u")))
	assert.Contains(t, p.View(), "Successfully unsubscribed")
	assert.Empty(t, e.srv.Subscriptions())
	ep, _ = e.session.PushEndpoint()
	assert.Empty(t, ep)
}

// failingClear is a session store whose endpoint can be saved but not cleared.
type failingClear struct {
	*session.KVStore
}

func (f failingClear) SetPushEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New("disk full")
	}
	return f.KVStore.SetPushEndpoint(endpoint)
}

func TestNotifications_UnsubscribeReportsLocalClearFailure(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	file := filepath.Join(t.TempDir(), "sub.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"endpoint":"https://push.example/2","keys":{"p256dh":"p","auth":"a"}}`), 0644))
	e.deps.Settings.SubscriptionFile = file
	e.deps.Session = failingClear{e.session}

	p := NewNotifications(e.deps)
	mount(t, p)
	deliver(t, p, p.Update(keyMsg("ctrl+s")))
	deliver(t, p, p.Update(keyMsg("ctrl+u")))

	assert.Contains(t, p.View(), "Unsubscribed, but the local endpoint could not be cleared.")
	assert.NotContains(t, p.View(), "Successfully unsubscribed")
	assert.Empty(t, e.srv.Subscriptions())
	ep, err := e.session.PushEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/2", ep)
}

func TestNotifications_Failures(t *testing.T) {
	e := newEnv(t)
	e.signIn(t)
	e.deps.Settings.SubscriptionFile = filepath.Join(t.TempDir(), "missing.json")

	p := NewNotifications(e.deps)
	mount(t, p)
	assert.Nil(t, p.Update(keyMsg("ctrl+s")))
	assert.Contains(t, p.View(), "failed to read subscription")

	msgs := messages(deliver(t, p, p.Update(keyMsg("ctrl+u"))))
	assert.Equal(t, []tea.Msg{AlertMsg{Text: "Push subscription failed: No active push subscription found."}}, msgs)
}

func TestNotFoundAndAbout(t *testing.T) {
	e := newEnv(t)

	nf := NewNotFound(e.deps, router.ActiveRoute{Path: "/nope"})
	assert.Nil(t, mount(t, nf))
	assert.Contains(t, nf.View(), "#/nope")
	assert.Equal(t, []tea.Msg{NavigateMsg{Hash: "#/"}}, messages(nf.Update(keyMsg("enter"))))

	about := NewAbout(e.deps)
	assert.Contains(t, about.Render(), "About Storyline")
	assert.Nil(t, about.AfterRender(t.Context()))
	assert.NotEmpty(t, about.Bindings())
	assert.Contains(t, about.View(), "Storyline")
}

func TestDisposedPagesIgnoreMessages(t *testing.T) {
	e := newEnv(t)
	pages := []Page{NewHome(e.deps), NewLogin(e.deps), NewRegister(e.deps), NewAddStory(e.deps), NewNotifications(e.deps), NewAbout(e.deps)}
	for _, p := range pages {
		p.Render()
		p.AfterRender(t.Context())
		p.Dispose()
		p.Dispose()
		assert.Nil(t, p.Bindings())
		assert.Nil(t, p.Update(keyMsg("enter")))
	}
}
