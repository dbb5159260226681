package models

import "time"

// Session represents one authenticated browser context. The token is opaque:
// it carries no claims and is only meaningful to the server-side session
// store. The UserID is a weak reference; deleting a user does not cascade
// here implicitly — revocation is an explicit step in the delete flow.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
