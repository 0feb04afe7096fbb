package session

import (
	"errors"

	"furnistore/storefront/internal/client"
)

// AuthError is returned when login or signup is rejected. Message is meant to
// be shown to the shopper as is.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

const (
	msgInvalidCredentials = "Invalid credentials"
	msgSignupFailed       = "Signup failed"
	msgNetwork            = "Network error – try later"
	msgBadToken           = "Login failed: unexpected response from server"
	msgRequestFailed      = "Request failed"
	msgBadResetLink       = "Invalid or expired reset link"
	msgWrongOldPassword   = "Wrong old password"
	msgPasswordMismatch   = "Passwords mismatch"
	msgNotLoggedIn        = "Please log in first"
	msgInvalidEmail       = "Please enter a valid email"
	msgShortPassword      = "Password must be at least 8 characters"
)

// authError picks the message to show for a failed backend call, preferring
// whatever the backend said.
func authError(err error, fallback string) *AuthError {
	var fetchErr *client.FetchError
	if errors.As(err, &fetchErr) {
		switch {
		case fetchErr.Message != "":
			return &AuthError{Message: fetchErr.Message, Err: err}
		case fetchErr.IsNetwork():
			return &AuthError{Message: msgNetwork, Err: err}
		}
	}
	return &AuthError{Message: fallback, Err: err}
}

// fixedAuthError ignores the backend's wording; only a network failure gets
// its own message.
func fixedAuthError(err error, message string) *AuthError {
	var fetchErr *client.FetchError
	if errors.As(err, &fetchErr) && fetchErr.IsNetwork() {
		return &AuthError{Message: msgNetwork, Err: err}
	}
	return &AuthError{Message: message, Err: err}
}
