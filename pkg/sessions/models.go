package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Session is one issued credential, keyed by the token's jti. A session is
// live until it expires or is revoked.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	JTI       string     `json:"jti"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsActive reports whether the session is neither revoked nor expired
func (s *Session) IsActive() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}

// CreateSessionRequest carries the parameters for creating a session
type CreateSessionRequest struct {
	UserID    uuid.UUID
	JTI       string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}
