package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_FieldPriority(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "Phone beats email", status: 400, body: `{"email":["Email taken"],"phone":["Phone taken"]}`, expected: "Phone taken"},
		{name: "Email beats name", status: 400, body: `{"name":["Name taken"],"email":["A user with this email already exists."]}`, expected: "A user with this email already exists."},
		{name: "Name list takes first", status: 400, body: `{"name":["first","second"]}`, expected: "first"},
		{name: "Phone as plain string", status: 400, body: `{"phone":"bad phone"}`, expected: "bad phone"},
		{name: "Resource list is joined", status: 400, body: `{"resource":["a","b"]}`, expected: "a,b"},
		{name: "User before non field errors", status: 400, body: `{"non_field_errors":["nfe"],"user":"conflict"}`, expected: "conflict"},
		{name: "Non field errors first element", status: 400, body: `{"non_field_errors":["The fields resource, booking_date, time_slot must make a unique set.","x"]}`, expected: "The fields resource, booking_date, time_slot must make a unique set."},
		{name: "Non field errors as plain string is whole", status: 400, body: `{"non_field_errors":"Slot closed."}`, expected: "Slot closed."},
		{name: "Error key", status: 401, body: `{"error":"Invalid email or password"}`, expected: "Invalid email or password"},
		{name: "Message key", status: 409, body: `{"message":"busy"}`, expected: "busy"},
		{name: "Detail key", status: 404, body: `{"detail":"Not found."}`, expected: "Not found."},
		{name: "Unknown keys fall back", status: 400, body: `{"capacity":["A valid integer is required."]}`, expected: "Server error: 400"},
		{name: "Empty values are skipped", status: 400, body: `{"phone":"","email":[],"name":null,"detail":"d"}`, expected: "d"},
		{name: "Not JSON", status: 502, body: `<html>Bad gateway</html>`, expected: "Server error: 502"},
		{name: "JSON array body", status: 500, body: `["boom"]`, expected: "Server error: 500"},
		{name: "Empty body", status: 500, body: ``, expected: "Server error: 500"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Resolve(tc.status, []byte(tc.body)))
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	body := []byte(`{"detail":"d","message":"m","error":"e","email":"mail","phone":"tel","name":"n"}`)
	first := Resolve(400, body)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Resolve(400, body))
	}
	assert.Equal(t, "tel", first)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "User conflict payload",
			err:      &StatusError{Status: 400, Body: []byte(`{"user": "conflict"}`)},
			expected: UserConflictMessage,
		},
		{
			name:     "Resource conflict payload",
			err:      &StatusError{Status: 400, Body: []byte(`{"resource": ["This resource is already booked for the selected date and time slot."]}`)},
			expected: ResourceConflictMessage,
		},
		{
			name:     "Unrelated text mentioning resource is still rewritten",
			err:      &StatusError{Status: 400, Body: []byte(`{"detail": "resource field may not be null"}`)},
			expected: ResourceConflictMessage,
		},
		{
			name:     "Resource checked before user",
			err:      &StatusError{Status: 400, Body: []byte(`{"error": "user and resource clash"}`)},
			expected: ResourceConflictMessage,
		},
		{
			name:     "Case sensitive",
			err:      &StatusError{Status: 400, Body: []byte(`{"error": "Resource offline"}`)},
			expected: "Resource offline",
		},
		{
			name:     "Plain message passes through",
			err:      &StatusError{Status: 400, Body: []byte(`{"detail": "Not found."}`)},
			expected: "Not found.",
		},
		{
			name:     "Fallback passes through",
			err:      &StatusError{Status: 503, Body: nil},
			expected: "Server error: 503",
		},
		{
			name:     "Network failure",
			err:      &NetworkError{BaseURL: "http://localhost:8000/api", Err: errors.New("dial tcp: connection refused")},
			expected: "Cannot connect to server. Please ensure the backend is running on http://localhost:8000/api",
		},
		{
			name:     "Wrapped status error",
			err:      fmt.Errorf("create booking: %w", &StatusError{Status: 400, Body: []byte(`{"user":"conflict"}`)}),
			expected: UserConflictMessage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.err))
		})
	}
}

func TestMessage_DoesNotRewrite(t *testing.T) {
	err := &StatusError{Status: 400, Body: []byte(`{"email":["A user with this email already exists."]}`)}
	assert.Equal(t, "A user with this email already exists.", Message(err))
	assert.Equal(t, UserConflictMessage, Classify(err))
	assert.Equal(t, "", Message(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(&StatusError{Status: http.StatusConflict}))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(&NetworkError{BaseURL: "x", Err: errors.New("refused")}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("decode failed")))
	assert.True(t, IsNotFound(&StatusError{Status: 404}))
	assert.False(t, IsNotFound(&StatusError{Status: 400}))
}
