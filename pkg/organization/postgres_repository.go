package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-org/pkg/pagination"
	"github.com/tendant/simple-org/pkg/user"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL organization repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Get retrieves an organization by id together with its user collection
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	entity := &Organization{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM organizations WHERE id = $1`, id,
	).Scan(&entity.ID, &entity.Name, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, password, role, name, phone, organization_id,
			email_verified, created_at, updated_at
		FROM users
		WHERE organization_id = $1
		ORDER BY name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		member := user.User{}
		err := rows.Scan(
			&member.ID,
			&member.Email,
			&member.Password,
			&member.Role,
			&member.Name,
			&member.Phone,
			&member.OrganizationID,
			&member.EmailVerified,
			&member.CreatedAt,
			&member.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entity.Users = append(entity.Users, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entity, nil
}

// List returns one page of organizations matching the filter plus the
// distinct match count
func (r *PostgresRepository) List(ctx context.Context, req pagination.PageRequest) ([]Organization, int, error) {
	column := req.Column(Columns)

	var count int
	countQuery := fmt.Sprintf(`SELECT COUNT(DISTINCT id) FROM organizations WHERE %s::text LIKE $1`, column)
	if err := r.pool.QueryRow(ctx, countQuery, req.LikePattern()).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	listQuery := fmt.Sprintf(
		`SELECT id, name, created_at, updated_at FROM organizations WHERE %s::text LIKE $1 ORDER BY %s %s OFFSET $2 LIMIT $3`,
		column, column, req.Sort,
	)
	rows, err := r.pool.Query(ctx, listQuery, req.LikePattern(), req.Offset(), req.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var docs []Organization
	for rows.Next() {
		entity := Organization{}
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.CreatedAt, &entity.UpdatedAt); err != nil {
			return nil, 0, err
		}
		docs = append(docs, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return docs, count, nil
}

// Create inserts an organization and returns the stored record
func (r *PostgresRepository) Create(ctx context.Context, entity Organization) (*Organization, error) {
	created := &Organization{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1) RETURNING id, name, created_at, updated_at`,
		entity.Name,
	).Scan(&created.ID, &created.Name, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update renames an organization and returns the re-read record
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, entity Organization) (*Organization, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE organizations SET name = $2, updated_at = NOW() WHERE id = $1`,
		id, entity.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrOrganizationNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes an organization and reports the number of affected records
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete organization: %w", err)
	}
	return tag.RowsAffected(), nil
}
