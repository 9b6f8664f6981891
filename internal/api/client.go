// Package api is the client for the remote Story API.
//
// Every call is attempted exactly once. Failures are normalized into *Error
// (network or remote) and returned to the caller without recovery.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"storyline/internal/logging"
	"storyline/internal/session"

	"github.com/google/uuid"
)

// DefaultBaseURL is the public Story API.
const DefaultBaseURL = "https://story-api.dicoding.dev/v1"

const maxResponseBytes = 4 << 20

// Client talks to the Story API. It reads the bearer token from the
// injected session store on every authenticated call.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	sessions  session.Store
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client is used
// as given; WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request, body read included. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for baseURL.
func New(baseURL string, sessions session.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		timeout:   60 * time.Second,
		sessions:  sessions,
		userAgent: "storyline",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Register creates an account.
func (c *Client) Register(ctx context.Context, r Registration) (Ack, error) {
	var ack Ack
	err := c.doJSON(ctx, "register", http.MethodPost, "/register", r, false, &ack)
	return ack, err
}

// Login exchanges credentials for a token. It does not touch the session
// store; the caller persists the result.
func (c *Client) Login(ctx context.Context, cr Credentials) (LoginResult, error) {
	var resp loginResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/login", cr, false, &resp); err != nil {
		return LoginResult{}, err
	}
	if resp.LoginResult.Token == "" {
		return LoginResult{}, remoteError("login", http.StatusOK, "login response carried no token", nil)
	}
	return resp.LoginResult, nil
}

// Logout clears the session store. There is no remote logout endpoint.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// ListStories fetches a page of stories.
func (c *Client) ListStories(ctx context.Context, q ListQuery) ([]Story, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Location {
		v.Set("location", "1")
	}
	path := "/stories"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var resp listResponse
	if err := c.do(ctx, "listStories", http.MethodGet, path, nil, "", true, &resp); err != nil {
		return nil, err
	}
	if resp.ListStory == nil {
		return []Story{}, nil
	}
	return resp.ListStory, nil
}

// GetStory fetches one story by id.
func (c *Client) GetStory(ctx context.Context, id string) (Story, error) {
	var resp storyResponse
	if err := c.do(ctx, "getStory", http.MethodGet, "/stories/"+url.PathEscape(id), nil, "", true, &resp); err != nil {
		return Story{}, err
	}
	if resp.Story == nil {
		return Story{}, remoteError("getStory", http.StatusOK, "Story data not available.", nil)
	}
	return *resp.Story, nil
}

// CreateStory submits a story as the signed-in user.
func (c *Client) CreateStory(ctx context.Context, d StoryDraft) (Ack, error) {
	return c.createStory(ctx, "createStory", "/stories", d, true)
}

// CreateStoryAsGuest submits a story without authentication.
func (c *Client) CreateStoryAsGuest(ctx context.Context, d StoryDraft) (Ack, error) {
	return c.createStory(ctx, "createStoryAsGuest", "/stories/guest", d, false)
}

func (c *Client) createStory(ctx context.Context, op, path string, d StoryDraft, auth bool) (Ack, error) {
	if err := d.Validate(); err != nil {
		return Ack{}, err
	}
	body, contentType, err := encodeDraft(d)
	if err != nil {
		return Ack{}, fmt.Errorf("%s: %w", op, err)
	}
	var ack Ack
	err = c.do(ctx, op, http.MethodPost, path, body, contentType, auth, &ack)
	return ack, err
}

// SubscribePush forwards a push subscription.
func (c *Client) SubscribePush(ctx context.Context, sub PushSubscription) (Ack, error) {
	var ack Ack
	err := c.doJSON(ctx, "subscribePush", http.MethodPost, "/notifications/subscribe", sub, true, &ack)
	return ack, err
}

// UnsubscribePush removes the subscription identified by endpoint.
func (c *Client) UnsubscribePush(ctx context.Context, endpoint string) (Ack, error) {
	var ack Ack
	body := struct {
		Endpoint string `json:"endpoint"`
	}{endpoint}
	err := c.doJSON(ctx, "unsubscribePush", http.MethodDelete, "/notifications/subscribe", body, true, &ack)
	return ack, err
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in interface{}, auth bool, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal request: %w", op, err)
	}
	return c.do(ctx, op, method, path, bytes.NewReader(data), "application/json", auth, out)
}

// do performs one request and decodes the envelope into out.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, auth bool, out interface{}) (err error) {
	reqID := uuid.NewString()
	log := logging.WithRequestID(logging.CategoryAPI, reqID)
	start := time.Now()
	defer func() {
		logging.Audit().RemoteCall(method+" "+path, time.Since(start), err)
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		sess, serr := c.sessions.Get()
		if serr != nil {
			return fmt.Errorf("%s: %w", op, serr)
		}
		if sess.Token != "" {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}
	}

	log.Debug("%s %s (auth=%v)", method, path, req.Header.Get("Authorization") != "")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("%s %s failed: %v", method, path, err)
		return networkError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return networkError(op, err)
	}
	log.Debug("%s %s -> %d (%d bytes)", method, path, resp.StatusCode, len(data))

	var env envelope
	if jerr := json.Unmarshal(data, &env); jerr != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return remoteError(op, resp.StatusCode, "", jerr)
		}
		return remoteError(op, resp.StatusCode, "invalid response from server", jerr)
	}
	if env.Error || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(op, resp.StatusCode, env.Message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return remoteError(op, resp.StatusCode, "invalid response from server", err)
	}
	return nil
}

// encodeDraft builds the multipart body of a story submission.
func encodeDraft(d StoryDraft) (io.Reader, string, error) {
	photo, err := io.ReadAll(d.Photo)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("description", d.Description); err != nil {
		return nil, "", err
	}

	name := d.PhotoName
	if name == "" {
		name = "photo"
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ct == "" {
		ct = http.DetectContentType(photo)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filepath.Base(name)))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(photo); err != nil {
		return nil, "", err
	}

	if d.Lat != nil {
		if err := w.WriteField("lat", strconv.FormatFloat(*d.Lat, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	if d.Lon != nil {
		if err := w.WriteField("lon", strconv.FormatFloat(*d.Lon, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
