package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/simple-org/pkg/pagination"
)

// ErrOrganizationNotFound is returned when no organization matches the lookup
var ErrOrganizationNotFound = errors.New("organization not found")

// Repository defines the persistence operations for organizations. Get loads
// the organization's user collection; List returns bare organizations.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Organization, error)
	List(ctx context.Context, req pagination.PageRequest) ([]Organization, int, error)
	Create(ctx context.Context, entity Organization) (*Organization, error)
	Update(ctx context.Context, id uuid.UUID, entity Organization) (*Organization, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
