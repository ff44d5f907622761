package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/simple-org/pkg/pagination"
)

// ErrUserNotFound is returned when no user matches the lookup
var ErrUserNotFound = errors.New("user not found")

// Repository defines the persistence operations for users. List takes a
// normalized pagination request and returns the page plus the distinct
// match count.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, req pagination.PageRequest) ([]User, int, error)
	Create(ctx context.Context, entity User) (*User, error)
	Update(ctx context.Context, id uuid.UUID, entity User) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	SetEmailVerified(ctx context.Context, email string) error
}
