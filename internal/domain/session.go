package domain

import "time"

// Session is the server-side record behind a session cookie. Only the hash of
// the token is persisted.
type Session struct {
	TokenHash     string    `json:"token_hash"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	LastTouchedAt time.Time `json:"last_touched_at"`

	// Touched is set by the session service when resolving extended ExpiresAt.
	Touched bool `json:"-"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AuthContext is what the session guard hands to protected handlers.
type AuthContext struct {
	UserID string
	Token  string
}
