package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storyline/internal/api"
	"storyline/internal/api/apitest"
	"storyline/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t   *testing.T
	ws  string
	srv *apitest.Server
}

func newCLI(t *testing.T) *cli {
	t.Setenv("STORYLINE_API_URL", "")
	t.Setenv("STORYLINE_DB", "")
	return &cli{t: t, ws: t.TempDir(), srv: apitest.NewServer(t)}
}

// run executes one storyline invocation against the fake API.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--workspace", c.ws, "--api-url", c.srv.URL}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) login(name string) {
	c.t.Helper()
	c.srv.AddUser(name, name+"@example.com", "secret123")
	c.mustRun("login", "--email", name+"@example.com", "--password", "secret123")
}

func TestCLI_RegisterLoginWhoamiLogout(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("register", "--name", "Ann", "--email", "ann@example.com", "--password", "secret123")
	assert.Equal(t, "Registration successful! Please login.\n", out)

	out = c.mustRun("login", "--email", "ann@example.com", "--password", "secret123")
	assert.Equal(t, "Welcome, Ann!\n", out)
	assert.FileExists(t, filepath.Join(c.ws, ".storyline", "session.db"))

	out = c.mustRun("whoami")
	assert.Contains(t, out, "Name:    Ann")
	assert.Contains(t, out, "from now")

	out = c.mustRun("logout")
	assert.Equal(t, "You have been logged out.\n", out)
	assert.Equal(t, "Not logged in.\n", c.mustRun("whoami"))
}

func TestCLI_FailedLoginKeepsPreviousSession(t *testing.T) {
	c := newCLI(t)
	c.login("bob")

	_, err := c.run("login", "--email", "bob@example.com", "--password", "nope-nope")
	require.Error(t, err)
	assert.Equal(t, "login failed: Invalid password", err.Error())
	assert.Contains(t, c.mustRun("whoami"), "Name:    bob")
}

func TestCLI_RegisterRequiresFlags(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("register", "--name", "Ann")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Empty(t, c.srv.Calls())
}

func TestCLI_StoriesList(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("stories", "list")
	require.Error(t, err)
	assert.Equal(t, "failed to load stories: Missing authentication", err.Error())

	c.login("ann")
	assert.Equal(t, "No stories available.\n", c.mustRun("stories", "list"))

	lat, lon := -8.1689, 113.7022
	c.srv.AddStory(api.Story{ID: "s1", Name: "Bob", Description: "<b>plain</b> words"})
	c.srv.AddStory(api.Story{ID: "s2", Name: "Cid", Description: "with a place", Lat: &lat, Lon: &lon})

	out := c.mustRun("stories", "list")
	assert.Contains(t, out, "s1  Bob")
	assert.Contains(t, out, "    plain words\n")
	assert.Contains(t, out, "Lat -8.168900, Lon 113.702200")

	out = c.mustRun("stories", "list", "--location")
	assert.Contains(t, out, "s2  Cid")
	assert.NotContains(t, out, "s1")

	out = c.mustRun("stories", "list", "--size", "1", "--page", "2")
	assert.Contains(t, out, "s1")
	assert.NotContains(t, out, "s2")
}

func TestCLI_StoriesShowFetchesConcurrently(t *testing.T) {
	c := newCLI(t)
	c.login("ann")
	lat, lon := 1.5, 2.5
	c.srv.AddStory(api.Story{ID: "a", Name: "Ann", Description: "first"})
	c.srv.AddStory(api.Story{ID: "b", Name: "Bob", Description: "second", Lat: &lat, Lon: &lon})

	out := c.mustRun("stories", "show", "a", "b")
	assert.Contains(t, out, "Posted by: Ann")
	assert.Contains(t, out, "Location: Not provided")
	assert.Contains(t, out, "Location: Lat 1.5, Lon 2.5")
	assert.Equal(t, 1, c.srv.CallCount(http.MethodGet, "/stories/a"))
	assert.Equal(t, 1, c.srv.CallCount(http.MethodGet, "/stories/b"))

	out, err := c.run("stories", "show", "a", "missing")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 stories could not be fetched", err.Error())
	assert.Contains(t, out, "missing: Failed to fetch story: Story not found")
	assert.Contains(t, out, "Posted by: Ann")
}

func TestCLI_StoriesAdd(t *testing.T) {
	c := newCLI(t)
	c.login("ann")
	photo := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\nrest"), 0644))

	out := c.mustRun("stories", "add", "--description", "Hello", "--photo", photo, "--lat", "-8.1689", "--lon", "113.7022")
	assert.Equal(t, "Story added successfully!\n", out)

	out = c.mustRun("stories", "add", "--description", "Anon", "--photo", photo, "--guest")
	assert.Equal(t, "Story added as guest successfully!\n", out)

	ups := c.srv.Uploads()
	require.Len(t, ups, 2)
	assert.Equal(t, "pic.png", ups[0].PhotoName)
	assert.Equal(t, "-8.1689", ups[0].Lat)
	assert.False(t, ups[0].Guest)
	assert.True(t, ups[1].Guest)
	assert.Empty(t, ups[1].Lat)
}

func TestCLI_StoriesAddRejectsIncompleteDraft(t *testing.T) {
	c := newCLI(t)
	c.login("ann")
	before := len(c.srv.Calls())

	_, err := c.run("stories", "add", "--description", "no photo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), api.DraftIncompleteMessage)

	_, err = c.run("stories", "add", "--description", "x", "--photo", "p.jpg", "--lat", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both --lat and --lon")

	assert.Len(t, c.srv.Calls(), before)
}

func TestCLI_NotifySubscribeUnsubscribe(t *testing.T) {
	c := newCLI(t)
	c.login("ann")
	file := filepath.Join(c.ws, "sub.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"endpoint":"https://push.example/ann","keys":{"p256dh":"k","auth":"a"}}`), 0644))

	_, err := c.run("notify", "unsubscribe")
	require.Error(t, err)
	assert.Equal(t, "no active push subscription found", err.Error())

	out := c.mustRun("notify", "subscribe", "--subscription", file)
	assert.Equal(t, "Successfully subscribed to push notifications.\n", out)
	assert.Equal(t, []string{"https://push.example/ann"}, c.srv.Subscriptions())

	out = c.mustRun("notify", "unsubscribe")
	assert.Equal(t, "Successfully unsubscribed from push notifications.\n", out)
	assert.Empty(t, c.srv.Subscriptions())
}

func TestCLI_InvalidConfigIsReported(t *testing.T) {
	c := newCLI(t)
	cfgPath := filepath.Join(c.ws, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("stories:\n  page_size: 0\n"), 0644))

	_, err := c.run("--config", cfgPath, "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stories.page_size must be positive")
}

func TestDescribeExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "no expiry", describeExpiry(session.Session{Token: "opaque"}, now))
}
