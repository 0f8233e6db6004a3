// Package session resolves the opaque "session" cookie into a validated
// identity. The cookie value is a URL-escaped JSON payload carrying the
// authenticated email and an optional role.
package session

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// CookieName is the cookie the login endpoint issues.
const CookieName = "session"

// Identity is the authenticated caller derived from a session payload.
// It is never persisted.
type Identity struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// ParseCookie turns a raw session payload into an Identity. Every failure
// path returns nil rather than an error: empty input, malformed JSON, and
// payloads without a non-empty string email all mean "unauthenticated".
// A role of any non-string type is dropped without invalidating the
// email.
func ParseCookie(raw string) *Identity {
	if raw == "" {
		return nil
	}

	var payload struct {
		Email any `json:"email"`
		Role  any `json:"role"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	email, ok := payload.Email.(string)
	if !ok || email == "" {
		return nil
	}

	identity := &Identity{Email: email}
	if role, ok := payload.Role.(string); ok {
		identity.Role = role
	}
	return identity
}

// FromRequest reads and parses the session cookie off an HTTP request.
// Returns nil when the cookie is absent or its payload is invalid.
func FromRequest(r *http.Request) *Identity {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}

	return ParseCookie(raw)
}

// Encode serializes an identity into the escaped cookie value issued at
// login. The inverse of FromRequest.
func Encode(identity Identity) string {
	payload, _ := json.Marshal(identity)
	return url.QueryEscape(string(payload))
}
