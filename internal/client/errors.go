package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrSessionExpired is returned for every 401 response. The forced logout
// has already run (or is running) by the time the caller sees it.
var ErrSessionExpired = errors.New("session expired")

// ErrRequestReused is returned when a Request value is sent a second time.
// The client never retries on its own and does not let callers loop a
// request through the pipeline either.
var ErrRequestReused = errors.New("request has already been sent")

// NetworkError means no response was received at all.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request ran past the client timeout or the
// caller's deadline.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// HTTPError is a response with a status of 400 or above, other than 401.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := e.Message()
	if len(msg) == 0 {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Message extracts a human readable message from a JSON error body of the
// form {"message": "..."} or {"error": "..."}.
func (e *HTTPError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return ""
	}
	if len(body.Message) > 0 {
		return body.Message
	}
	return strings.TrimSpace(body.Error)
}

// IsStatus reports whether err is an HTTPError carrying status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}
