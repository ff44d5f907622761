package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository implements the Repository interface in memory, for tests
// and local development without a database.
type InMemRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemRepository creates an empty in-memory session repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		sessions: make(map[string]*Session),
	}
}

// Create creates a new session
func (r *InMemRepository) Create(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	session := &Session{
		ID:        uuid.New(),
		UserID:    req.UserID,
		JTI:       req.JTI,
		IssuedAt:  now,
		ExpiresAt: req.ExpiresAt,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		CreatedAt: now,
	}
	r.sessions[req.JTI] = session

	copied := *session
	return &copied, nil
}

// GetByJTI retrieves a session by its JTI
func (r *InMemRepository) GetByJTI(ctx context.Context, jti string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[jti]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// RevokeByJTI marks a session revoked by its JTI
func (r *InMemRepository) RevokeByJTI(ctx context.Context, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[jti]
	if !ok || session.RevokedAt != nil {
		return ErrSessionNotFound
	}
	now := time.Now()
	session.RevokedAt = &now
	return nil
}

// RevokeAllByUserID revokes every live session of a user
func (r *InMemRepository) RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, session := range r.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			session.RevokedAt = &now
		}
	}
	return nil
}

// DeleteExpired removes sessions past their expiry
func (r *InMemRepository) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for jti, session := range r.sessions {
		if session.ExpiresAt.Before(now) {
			delete(r.sessions, jti)
		}
	}
	return nil
}
