package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FetchError reports a failed call to the backend. StatusCode is zero when no
// response was received.
type FetchError struct {
	Op         string
	StatusCode int
	Message    string // Backend-supplied message, safe to show to the shopper
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether the request never got a response.
func (e *FetchError) IsNetwork() bool {
	return e.StatusCode == 0
}

// errorBody matches the backend's error payload. Validation failures send a
// list of messages instead of a single string.
type errorBody struct {
	Message json.RawMessage `json:"message"`
}

func parseErrorMessage(body string) string {
	var payload errorBody
	if err := json.Unmarshal([]byte(body), &payload); err != nil || len(payload.Message) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(payload.Message, &single); err == nil {
		return strings.TrimSpace(single)
	}

	var many []string
	if err := json.Unmarshal(payload.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}

	return ""
}
