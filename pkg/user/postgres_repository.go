package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-org/pkg/pagination"
)

const userColumns = `
	id, email, password, role, name, phone, organization_id,
	email_verified, created_at, updated_at
`

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL user repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

func scanUser(row pgx.Row) (*User, error) {
	entity := &User{}
	err := row.Scan(
		&entity.ID,
		&entity.Email,
		&entity.Password,
		&entity.Role,
		&entity.Name,
		&entity.Phone,
		&entity.OrganizationID,
		&entity.EmailVerified,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return entity, nil
}

// Get retrieves a user by id
func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// List returns one page of users matching the filter, plus the distinct
// match count with pagination not applied. The sort column and direction
// come from the whitelist-validated request, never from raw input.
func (r *PostgresRepository) List(ctx context.Context, req pagination.PageRequest) ([]User, int, error) {
	column := req.Column(Columns)

	var count int
	countQuery := fmt.Sprintf(`SELECT COUNT(DISTINCT id) FROM users WHERE %s::text LIKE $1`, column)
	if err := r.pool.QueryRow(ctx, countQuery, req.LikePattern()).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	listQuery := fmt.Sprintf(
		`SELECT `+userColumns+` FROM users WHERE %s::text LIKE $1 ORDER BY %s %s OFFSET $2 LIMIT $3`,
		column, column, req.Sort,
	)
	rows, err := r.pool.Query(ctx, listQuery, req.LikePattern(), req.Offset(), req.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var docs []User
	for rows.Next() {
		entity, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return docs, count, nil
}

// Create inserts a user and returns the stored record
func (r *PostgresRepository) Create(ctx context.Context, entity User) (*User, error) {
	query := `
		INSERT INTO users (email, password, role, name, phone, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query,
		entity.Email,
		entity.Password,
		entity.Role,
		entity.Name,
		entity.Phone,
		entity.OrganizationID,
	))
}

// Update persists the mutable fields of a user and returns the re-read record
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, entity User) (*User, error) {
	query := `
		UPDATE users
		SET email = $2,
			password = COALESCE(NULLIF($3, ''), password),
			role = $4,
			name = $5,
			phone = $6,
			organization_id = $7,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		id,
		entity.Email,
		entity.Password,
		entity.Role,
		entity.Name,
		entity.Phone,
		entity.OrganizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a user and reports the number of affected records
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetEmailVerified marks the user with the given email as verified
func (r *PostgresRepository) SetEmailVerified(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
