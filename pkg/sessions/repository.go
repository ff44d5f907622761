package sessions

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session matches the lookup
var ErrSessionNotFound = errors.New("session not found")

// Repository defines the persistence operations for sessions
type Repository interface {
	Create(ctx context.Context, req CreateSessionRequest) (*Session, error)
	GetByJTI(ctx context.Context, jti string) (*Session, error)
	RevokeByJTI(ctx context.Context, jti string) error
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
