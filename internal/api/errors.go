package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is matched by errors.Is for any 404 response.
var ErrNotFound = errors.New("not found")

// ErrUnrecognizedResult indicates a grading response matched neither the
// scored nor the retake shape.
var ErrUnrecognizedResult = errors.New("unrecognized grading result")

// APIError is a failed call: either a transport failure (Status 0) or a
// non-2xx response. Detail carries the service's message when it sent one.
type APIError struct {
	Status int
	Detail string
	Route  string
	Err    error
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("request failed: %d %s", e.Status, http.StatusText(e.Status))
	default:
		return "request failed"
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Is makes 404 responses match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// AuthError means the token is missing, expired or rejected. The session
// must be cleared and the learner sent back to login.
type AuthError struct {
	Status int
	Detail string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return "authentication failed"
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuth reports whether err should sign the learner out.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// authPatterns are the service's token failure messages. Some of them arrive
// with statuses other than 401/403.
var authPatterns = []string{
	"token is expired",
	"invalid jwt",
	"token has invalid claims",
	"unable to parse or verify signature",
	"unauthorized",
	"authentication failed",
	"not authenticated",
	"could not validate credentials",
}

func isAuthMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, p := range authPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// parseDetail extracts the "detail" field of an error body. Validation
// errors send a list of objects; their messages are joined.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// responseError classifies a non-2xx response.
func responseError(route string, status int, body []byte) error {
	detail := parseDetail(body)
	if status == http.StatusUnauthorized || status == http.StatusForbidden || isAuthMessage(detail) {
		return &AuthError{Status: status, Detail: detail}
	}
	return &APIError{Status: status, Detail: detail, Route: route}
}
