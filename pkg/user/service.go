package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/auth"
	"github.com/tendant/simple-org/pkg/crypto"
	"github.com/tendant/simple-org/pkg/pagination"
)

// Service enforces the user business rules and maps between entities and DTOs
type Service struct {
	repo   Repository
	crypto *crypto.Service
}

// NewService creates a new user service
func NewService(repo Repository, cryptoService *crypto.Service) *Service {
	return &Service{
		repo:   repo,
		crypto: cryptoService,
	}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apierror.BadRequest("Invalid user id", map[string]apierror.FieldError{
			"id": {Message: "must be a valid UUID"},
		})
	}
	return parsed, nil
}

// Get returns a user by id, or a not-found error
func (s *Service) Get(ctx context.Context, id string) (UserDTO, error) {
	userID, err := parseID(id)
	if err != nil {
		return UserDTO{}, err
	}
	entity, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserDTO{}, apierror.NotFound(id, "User").WithSource("user")
		}
		return UserDTO{}, err
	}
	return ToDTO(*entity), nil
}

// GetPaginated returns one bounded, filtered, sorted page of users.
// An invalid limit is rejected before any query runs; storage errors
// propagate unchanged to the normalizer.
func (s *Service) GetPaginated(ctx context.Context, req pagination.PageRequest) (pagination.PageResult[UserDTO], error) {
	normalized, err := req.Normalize(DefaultSortField, Columns)
	if err != nil {
		return pagination.PageResult[UserDTO]{}, err
	}
	docs, count, err := s.repo.List(ctx, normalized)
	if err != nil {
		return pagination.PageResult[UserDTO]{}, err
	}
	return pagination.MapResult(pagination.NewResult(normalized, docs, count), ToDTO), nil
}

func validateCreate(dto UserDTO) map[string]apierror.FieldError {
	fields := map[string]apierror.FieldError{}
	if dto.Email == "" {
		fields["email"] = apierror.FieldError{Message: "required"}
	}
	if dto.Password == "" {
		fields["password"] = apierror.FieldError{Message: "required"}
	}
	if dto.Role == "" {
		fields["role"] = apierror.FieldError{Message: "required"}
	} else if !ValidRole(dto.Role) {
		fields["role"] = apierror.FieldError{Message: "must be one of admin, editor, user"}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Create validates the required fields, encrypts the credential and persists
// the user.
func (s *Service) Create(ctx context.Context, dto UserDTO) (UserDTO, error) {
	if fields := validateCreate(dto); fields != nil {
		return UserDTO{}, apierror.Validation("User validation failed", fields).WithSource("user")
	}

	entity := FromDTO(dto)
	encrypted, err := s.crypto.Encrypt(dto.Password)
	if err != nil {
		return UserDTO{}, apierror.Internal("Failed to encrypt credential").WrapErr(err).WithSource("user")
	}
	entity.Password = encrypted

	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return UserDTO{}, err
	}
	if created == nil {
		return UserDTO{}, apierror.Internal("Failed to create user").WithSource("user")
	}
	return ToDTO(*created), nil
}

// Update persists the DTO onto an existing user, failing with not-found when
// the target does not exist.
func (s *Service) Update(ctx context.Context, id string, dto UserDTO) (UserDTO, error) {
	userID, err := parseID(id)
	if err != nil {
		return UserDTO{}, err
	}
	if _, err := s.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserDTO{}, apierror.NotFound(id, "User").WithSource("user")
		}
		return UserDTO{}, err
	}

	entity := FromDTO(dto)
	if dto.Password != "" {
		encrypted, err := s.crypto.Encrypt(dto.Password)
		if err != nil {
			return UserDTO{}, apierror.Internal("Failed to encrypt credential").WrapErr(err).WithSource("user")
		}
		entity.Password = encrypted
	}

	updated, err := s.repo.Update(ctx, userID, entity)
	if err != nil {
		return UserDTO{}, err
	}
	if updated == nil {
		return UserDTO{}, apierror.Internal("Failed to update user").WithSource("user")
	}
	return ToDTO(*updated), nil
}

// Delete removes a user and returns the number of affected records
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	userID, err := parseID(id)
	if err != nil {
		return 0, err
	}
	if _, err := s.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, apierror.NotFound(id, "User").WithSource("user")
		}
		return 0, err
	}
	return s.repo.Delete(ctx, userID)
}

// ResolveIdentity loads the authenticated identity for a session's user,
// with the role taken from the user record.
func (s *Service) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*auth.Identity, error) {
	entity, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{
		ID:    entity.ID.String(),
		Email: entity.Email,
		Name:  entity.Name.String,
		Role:  entity.Role,
	}, nil
}
