// Package apitest runs an in-memory Story API on httptest for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"storyline/internal/api"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Call records one request the server received.
type Call struct {
	Method string
	Path   string
	Auth   string
}

type user struct {
	id       string
	name     string
	email    string
	password string
}

type failure struct {
	status  int
	message string
}

// Server is a fake Story API. The zero value is not usable; call NewServer.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	secret        []byte
	users         map[string]user // by email
	tokens        map[string]string
	stories       []api.Story
	subscriptions map[string]api.PushSubscription
	failures      map[string]failure
	loginOverride *api.LoginResult
	calls         []Call
	uploads       []Upload
	hold          chan struct{}
}

// Upload is a received multipart story submission.
type Upload struct {
	Description string
	PhotoName   string
	PhotoType   string
	Photo       []byte
	Lat, Lon    string
	Guest       bool
}

// NewServer starts a server and closes it when the test ends.
func NewServer(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{
		secret:        []byte("apitest-secret"),
		users:         make(map[string]user),
		tokens:        make(map[string]string),
		subscriptions: make(map[string]api.PushSubscription),
		failures:      make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /stories", s.authed(s.handleList))
	mux.HandleFunc("GET /stories/{id}", s.authed(s.handleGet))
	mux.HandleFunc("POST /stories", s.authed(s.handleCreate))
	mux.HandleFunc("POST /stories/guest", s.handleCreateGuest)
	mux.HandleFunc("POST /notifications/subscribe", s.authed(s.handleSubscribe))
	mux.HandleFunc("DELETE /notifications/subscribe", s.authed(s.handleUnsubscribe))

	s.Server = httptest.NewServer(s.record(mux))
	tb.Cleanup(func() {
		s.Release()
		s.Close()
	})
	return s
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "user-" + uuid.NewString()[:8]
	s.users[email] = user{id: id, name: name, email: email, password: password}
	return id
}

// AddStory seeds a story. CreatedAt defaults to now.
func (s *Server) AddStory(st api.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now().UTC()
	}
	s.stories = append(s.stories, st)
}

// IssueToken returns a valid token for a user id without a login call.
func (s *Server) IssueToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(userID)
}

// SetLoginResult makes every login with a known email succeed with r.
func (s *Server) SetLoginResult(r api.LoginResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginOverride = &r
	s.tokens[r.Token] = r.UserID
}

// Fail makes "METHOD /path" answer with an error envelope.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Hold blocks every request until Release is called.
func (s *Server) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold == nil {
		s.hold = make(chan struct{})
	}
}

// Release unblocks held requests.
func (s *Server) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold != nil {
		close(s.hold)
		s.hold = nil
	}
}

// Calls returns the received requests in order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts requests to "METHOD /path".
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Uploads returns received story submissions.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// Subscriptions returns the registered push endpoints.
func (s *Server) Subscriptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.subscriptions))
	for ep := range s.subscriptions {
		out = append(out, ep)
	}
	sort.Strings(out)
	return out
}

func (s *Server) issue(userID string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	s.tokens[tok] = userID
	return tok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")})
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		hold := s.hold
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing authentication")
			return
		}
		s.mu.Lock()
		uid, ok := s.tokens[raw]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		h(w, r, uid)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in api.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if in.Name == "" || in.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if len(in.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}
	s.mu.Lock()
	_, exists := s.users[in.Email]
	s.mu.Unlock()
	if exists {
		writeError(w, http.StatusBadRequest, "Email is already taken")
		return
	}
	s.AddUser(in.Name, in.Email, in.Password)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"error": false, "message": "User Created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginOverride != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": false, "message": "success", "loginResult": s.loginOverride})
		return
	}
	u, ok := s.users[in.Email]
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found")
		return
	}
	if u.password != in.Password {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	res := api.LoginResult{UserID: u.id, Name: u.name, Token: s.issue(u.id)}
	writeJSON(w, http.StatusOK, map[string]interface{}{"error": false, "message": "success", "loginResult": res})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ string) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	withLoc := q.Get("location") == "1"

	s.mu.Lock()
	var all []api.Story
	for i := len(s.stories) - 1; i >= 0; i-- {
		st := s.stories[i]
		if withLoc && !st.HasLocation() {
			continue
		}
		all = append(all, st)
	}
	s.mu.Unlock()

	if size > 0 {
		if page < 1 {
			page = 1
		}
		from := (page - 1) * size
		if from > len(all) {
			from = len(all)
		}
		to := from + size
		if to > len(all) {
			to = len(all)
		}
		all = all[from:to]
	}
	if all == nil {
		all = []api.Story{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"error": false, "message": "Stories fetched successfully", "listStory": all})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, _ string) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stories {
		if st.ID == id {
			writeJSON(w, http.StatusOK, map[string]interface{}{"error": false, "message": "Story fetched successfully", "story": st})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Story not found")
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, uid string) {
	s.createStory(w, r, uid, false)
}

func (s *Server) handleCreateGuest(w http.ResponseWriter, r *http.Request) {
	s.createStory(w, r, "", true)
}

func (s *Server) createStory(w http.ResponseWriter, r *http.Request, uid string, guest bool) {
	if err := r.ParseMultipartForm(2 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	up := Upload{
		Description: r.FormValue("description"),
		Lat:         r.FormValue("lat"),
		Lon:         r.FormValue("lon"),
		Guest:       guest,
	}
	if up.Description == "" {
		writeError(w, http.StatusBadRequest, "\"description\" is required")
		return
	}
	f, hdr, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "\"photo\" is required")
		return
	}
	defer f.Close()
	up.Photo, _ = io.ReadAll(f)
	up.PhotoName = hdr.Filename
	up.PhotoType = hdr.Header.Get("Content-Type")

	name := "Guest"
	s.mu.Lock()
	for _, u := range s.users {
		if u.id == uid {
			name = u.name
		}
	}
	st := api.Story{
		ID:          "story-" + uuid.NewString()[:8],
		Name:        name,
		Description: up.Description,
		PhotoURL:    "https://story-api.example/images/" + hdr.Filename,
		CreatedAt:   time.Now().UTC(),
	}
	if lat, err := strconv.ParseFloat(up.Lat, 64); err == nil {
		st.Lat = &lat
	}
	if lon, err := strconv.ParseFloat(up.Lon, 64); err == nil {
		st.Lon = &lon
	}
	s.stories = append(s.stories, st)
	s.uploads = append(s.uploads, up)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]interface{}{"error": false, "message": "Story created successfully"})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request, _ string) {
	var sub api.PushSubscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "\"endpoint\" is required")
		return
	}
	s.mu.Lock()
	s.subscriptions[sub.Endpoint] = sub
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"error": false, "message": "Success to subscribe web push notification.", "data": sub})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request, _ string) {
	var in struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "\"endpoint\" is required")
		return
	}
	s.mu.Lock()
	delete(s.subscriptions, in.Endpoint)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"error": false, "message": "Success to unsubscribe web push notification."})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": true, "message": message})
}
