package domain

import "time"

// Session is a server-side record binding a browser cookie to a user. The
// cookie carries an opaque token; only its SHA-256 hash is stored here.
type Session struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time // nil when not revoked
	LastSeenAt *time.Time
	IPAddress  string
	CreatedAt  time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
