package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed remote call.
type Kind int

const (
	// KindNetwork is a transport failure: DNS, refused connection, timeout.
	KindNetwork Kind = iota + 1
	// KindRemote is a response the server marked as failed, or one that could not be read.
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Error is the single error type returned for failed remote calls.
// Callers that only need text for the user should use Message.
type Error struct {
	Kind    Kind
	Op      string // client operation, e.g. "login"
	Status  int    // HTTP status, 0 for network errors
	Message string // human-readable message from the envelope or transport
	Err     error  // underlying transport or decode error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *Error) Unwrap() error { return e.Err }

func networkError(op string, err error) *Error {
	msg := "network error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	default:
		var ue interface{ Unwrap() error }
		if errors.As(err, &ue) && ue.Unwrap() != nil {
			msg = "network error: " + ue.Unwrap().Error()
		} else if err != nil {
			msg = "network error: " + err.Error()
		}
	}
	return &Error{Kind: KindNetwork, Op: op, Message: msg, Err: err}
}

func remoteError(op string, status int, message string, err error) *Error {
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(status)
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", status)
		}
	}
	return &Error{Kind: KindRemote, Op: op, Status: status, Message: message, Err: err}
}

// ValidationError is a client-side required-field failure. It is raised
// before any request is built.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Message extracts the user-facing message from err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}
