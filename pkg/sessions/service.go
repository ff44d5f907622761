package sessions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Service provides session lifecycle operations over a Repository
type Service struct {
	repo Repository
}

// NewService creates a new session service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// CreateSession records a newly issued token
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	if req.JTI == "" {
		return nil, errors.New("jti is required")
	}
	return s.repo.Create(ctx, req)
}

// GetActiveSession resolves a live session by jti. Revoked and expired
// sessions are reported as not found.
func (s *Service) GetActiveSession(ctx context.Context, jti string) (*Session, error) {
	session, err := s.repo.GetByJTI(ctx, jti)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// RevokeSession revokes a session by jti
func (s *Service) RevokeSession(ctx context.Context, jti string) error {
	return s.repo.RevokeByJTI(ctx, jti)
}

// RevokeUserSessions revokes every live session of a user, used when a user
// is deleted or their credentials change.
func (s *Service) RevokeUserSessions(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeAllByUserID(ctx, userID)
}

// CleanupExpired removes expired sessions; failures are logged, not fatal
func (s *Service) CleanupExpired(ctx context.Context) {
	if err := s.repo.DeleteExpired(ctx); err != nil {
		slog.Error("Failed cleaning up expired sessions", "err", err)
	}
}
