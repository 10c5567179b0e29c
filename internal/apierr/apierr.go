// Package apierr turns failures of the booking backend into messages a user
// can act on.
package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	ResourceConflictMessage = "This resource is already booked for the selected date and time slot. Please choose a different time or resource."
	UserConflictMessage     = "You already have a booking at this time slot. One user cannot make two bookings at the same time."
)

// StatusError is returned when the backend answered with a non-2xx status.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return Resolve(e.Status, e.Body)
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	BaseURL string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Cannot connect to server. Please ensure the backend is running on %s", e.BaseURL)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// fieldOrder is the order in which validation payload keys are consulted.
// firstOnly marks keys whose list values contribute only their first element;
// the rest are joined.
var fieldOrder = []struct {
	key       string
	firstOnly bool
}{
	{"phone", true},
	{"email", true},
	{"name", true},
	{"resource", false},
	{"user", false},
	{"non_field_errors", true},
	{"error", false},
	{"message", false},
	{"detail", false},
}

// Resolve extracts the message of a failed response body.
func Resolve(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return fallback(status)
	}
	for _, f := range fieldOrder {
		if msg, ok := text(payload[f.key], f.firstOnly); ok {
			return msg
		}
	}
	return fallback(status)
}

func fallback(status int) string {
	return fmt.Sprintf("Server error: %d", status)
}

// text renders a payload value. Nulls, empty strings and empty lists are absent.
func text(v any, firstOnly bool) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case []any:
		if len(val) == 0 {
			return "", false
		}
		if firstOnly {
			return text(val[0], false)
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, _ := text(item, false)
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	case float64:
		return fmt.Sprint(val), true
	case bool:
		return fmt.Sprint(val), val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// Message returns the user-facing text of err without any rewriting.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return err.Error()
}

// Classify is Message for booking forms: any text mentioning "resource" or
// "user" is taken to be a double-booking and replaced with the matching fixed
// explanation. The match is on incidental wording, not an error code.
func Classify(err error) string {
	msg := Message(err)
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return msg
	}
	switch {
	case strings.Contains(msg, "resource"):
		return ResourceConflictMessage
	case strings.Contains(msg, "user"):
		return UserConflictMessage
	}
	return msg
}

// HTTPStatus picks the status a console endpoint should answer with for err.
func HTTPStatus(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether the backend answered 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound
}
