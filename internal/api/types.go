package api

import (
	"io"
	"strings"
	"time"
)

// Registration is the body of POST /register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the body of POST /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the loginResult field of a successful login.
type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

// Story is a remote story post. The client never mutates one in place.
type Story struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
}

// HasLocation reports whether both coordinates are present.
func (s Story) HasLocation() bool { return s.Lat != nil && s.Lon != nil }

// ListQuery holds the optional filters of GET /stories. Zero values are omitted.
type ListQuery struct {
	Page     int
	Size     int
	Location bool // only stories carrying coordinates
}

// StoryDraft is the input of a story submission. It is discarded after the
// request; the caller owns Photo and closes it if needed.
type StoryDraft struct {
	Description string
	Photo       io.Reader
	PhotoName   string
	Lat         *float64
	Lon         *float64
}

// DraftIncompleteMessage is shown when a draft lacks a description or photo.
const DraftIncompleteMessage = "Please fill in description and upload or take a photo."

// Validate checks the required fields.
func (d StoryDraft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if d.Photo == nil {
		missing = append(missing, "photo")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: DraftIncompleteMessage}
	}
	return nil
}

// PushSubscription is the platform push registration, passed through as is.
type PushSubscription struct {
	Endpoint       string   `json:"endpoint"`
	ExpirationTime *int64   `json:"expirationTime,omitempty"`
	Keys           PushKeys `json:"keys"`
}

// PushKeys are the subscription's encryption keys.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Ack is the envelope of calls that return no payload.
type Ack struct {
	Message string `json:"message"`
}

type envelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type loginResponse struct {
	LoginResult LoginResult `json:"loginResult"`
}

type listResponse struct {
	ListStory []Story `json:"listStory"`
}

type storyResponse struct {
	Story *Story `json:"story"`
}
