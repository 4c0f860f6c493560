// Package identity resolves inbound request credentials against the hosted
// auth provider. An absent or invalid session is a normal nil result; only a
// provider that cannot be reached at all surfaces as an error.
package identity

import "errors"

// Identity is the authenticated external user behind a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is the auth provider's view of a live session.
type Session struct {
	UserID string
	Email  string
}

// ErrProviderUnavailable indicates the auth provider could not be reached or
// returned a malformed response. Callers map this to a generic 500-class
// response; it must never be conflated with "no session".
var ErrProviderUnavailable = errors.New("identity: auth provider unavailable")
