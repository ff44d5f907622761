package organization

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-org/pkg/pagination"
)

// InMemRepository implements the Repository interface in memory, for tests
// and local development without a database.
type InMemRepository struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]Organization
}

// NewInMemRepository creates an empty in-memory organization repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		orgs: make(map[uuid.UUID]Organization),
	}
}

// Get retrieves an organization by id
func (r *InMemRepository) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.orgs[id]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	return &entity, nil
}

func fieldValue(entity Organization, field string) string {
	switch field {
	case "created_at":
		return entity.CreatedAt.Format(time.RFC3339Nano)
	default:
		return entity.Name
	}
}

// List returns one page of organizations matching the filter plus the total
// match count
func (r *InMemRepository) List(ctx context.Context, req pagination.PageRequest) ([]Organization, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Organization
	for _, entity := range r.orgs {
		if req.Filter == "" || strings.Contains(fieldValue(entity, req.Field), req.Filter) {
			matched = append(matched, entity)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		less := fieldValue(matched[i], req.Field) < fieldValue(matched[j], req.Field)
		if req.Sort == pagination.SortDesc {
			return !less
		}
		return less
	})

	count := len(matched)
	start := req.Offset()
	if start > count {
		start = count
	}
	end := start + req.Limit
	if end > count {
		end = count
	}
	return matched[start:end], count, nil
}

// Create inserts an organization and returns the stored record
func (r *InMemRepository) Create(ctx context.Context, entity Organization) (*Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entity.ID = uuid.New()
	entity.CreatedAt = now
	entity.UpdatedAt = now
	r.orgs[entity.ID] = entity

	created := entity
	return &created, nil
}

// Update renames an organization and returns the updated record
func (r *InMemRepository) Update(ctx context.Context, id uuid.UUID, entity Organization) (*Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orgs[id]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	current.Name = entity.Name
	current.UpdatedAt = time.Now()
	r.orgs[id] = current

	updated := current
	return &updated, nil
}

// Delete removes an organization and reports the number of affected records
func (r *InMemRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orgs[id]; !ok {
		return 0, nil
	}
	delete(r.orgs, id)
	return 1, nil
}
