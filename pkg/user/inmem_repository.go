package user

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
// and local development without a database. Pagination semantics mirror the
// PostgreSQL repository: substring filter, sorted page, distinct count.
type InMemRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewInMemRepository creates an empty in-memory user repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		users: make(map[uuid.UUID]User),
	}
}

// Get retrieves a user by id
func (r *InMemRepository) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &entity, nil
}

// GetByEmail retrieves a user by email
func (r *InMemRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entity := range r.users {
		if entity.Email == email {
			found := entity
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func fieldValue(entity User, field string) string {
	switch field {
	case "email":
		return entity.Email
	case "role":
		return entity.Role
	case "phone":
		return entity.Phone.String
	case "created_at":
		return entity.CreatedAt.Format(time.RFC3339Nano)
	default:
		return entity.Name.String
	}
}

// List returns one page of users matching the filter plus the total match count
func (r *InMemRepository) List(ctx context.Context, req pagination.PageRequest) ([]User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []User
	for _, entity := range r.users {
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

// Create inserts a user and returns the stored record
func (r *InMemRepository) Create(ctx context.Context, entity User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entity.ID = uuid.New()
	entity.CreatedAt = now
	entity.UpdatedAt = now
	r.users[entity.ID] = entity

	created := entity
	return &created, nil
}

// Update persists the mutable fields of a user and returns the updated record
func (r *InMemRepository) Update(ctx context.Context, id uuid.UUID, entity User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	current.Email = entity.Email
	if entity.Password != "" {
		current.Password = entity.Password
	}
	current.Role = entity.Role
	current.Name = entity.Name
	current.Phone = entity.Phone
	current.OrganizationID = entity.OrganizationID
	current.UpdatedAt = time.Now()
	r.users[id] = current

	updated := current
	return &updated, nil
}

// Delete removes a user and reports the number of affected records
func (r *InMemRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

// SetEmailVerified marks the user with the given email as verified
func (r *InMemRepository) SetEmailVerified(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entity := range r.users {
		if entity.Email == email {
			entity.EmailVerified = true
			r.users[id] = entity
			return nil
		}
	}
	return ErrUserNotFound
}
