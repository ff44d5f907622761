package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/pagination"
)

// Service enforces the organization business rules and maps between entities
// and DTOs
type Service struct {
	repo Repository
}

// NewService creates a new organization service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apierror.BadRequest("Invalid organization id", map[string]apierror.FieldError{
			"id": {Message: "must be a valid UUID"},
		})
	}
	return parsed, nil
}

// Get returns an organization with its user collection, or a not-found error
func (s *Service) Get(ctx context.Context, id string) (OrganizationDTO, error) {
	orgID, err := parseID(id)
	if err != nil {
		return OrganizationDTO{}, err
	}
	entity, err := s.repo.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return OrganizationDTO{}, apierror.NotFound(id, "Organization").WithSource("organization")
		}
		return OrganizationDTO{}, err
	}
	return ToDTO(*entity), nil
}

// GetPaginated returns one bounded, filtered, sorted page of organizations
func (s *Service) GetPaginated(ctx context.Context, req pagination.PageRequest) (pagination.PageResult[OrganizationDTO], error) {
	normalized, err := req.Normalize(DefaultSortField, Columns)
	if err != nil {
		return pagination.PageResult[OrganizationDTO]{}, err
	}
	docs, count, err := s.repo.List(ctx, normalized)
	if err != nil {
		return pagination.PageResult[OrganizationDTO]{}, err
	}
	return pagination.MapResult(pagination.NewResult(normalized, docs, count), ToDTO), nil
}

// Create validates the required fields and persists the organization
func (s *Service) Create(ctx context.Context, dto OrganizationDTO) (OrganizationDTO, error) {
	if dto.Name == "" {
		return OrganizationDTO{}, apierror.Validation("Organization validation failed", map[string]apierror.FieldError{
			"name": {Message: "required"},
		}).WithSource("organization")
	}

	created, err := s.repo.Create(ctx, FromDTO(dto))
	if err != nil {
		return OrganizationDTO{}, err
	}
	if created == nil {
		return OrganizationDTO{}, apierror.Internal("Failed to create organization").WithSource("organization")
	}
	return ToDTO(*created), nil
}

// Update renames an existing organization, failing with not-found when the
// target does not exist
func (s *Service) Update(ctx context.Context, id string, dto OrganizationDTO) (OrganizationDTO, error) {
	orgID, err := parseID(id)
	if err != nil {
		return OrganizationDTO{}, err
	}
	if _, err := s.repo.Get(ctx, orgID); err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return OrganizationDTO{}, apierror.NotFound(id, "Organization").WithSource("organization")
		}
		return OrganizationDTO{}, err
	}

	updated, err := s.repo.Update(ctx, orgID, FromDTO(dto))
	if err != nil {
		return OrganizationDTO{}, err
	}
	if updated == nil {
		return OrganizationDTO{}, apierror.Internal("Failed to update organization").WithSource("organization")
	}
	return ToDTO(*updated), nil
}

// Delete removes an organization and returns the number of affected records
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	orgID, err := parseID(id)
	if err != nil {
		return 0, err
	}
	if _, err := s.repo.Get(ctx, orgID); err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return 0, apierror.NotFound(id, "Organization").WithSource("organization")
		}
		return 0, err
	}
	return s.repo.Delete(ctx, orgID)
}
