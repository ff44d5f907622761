package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL session repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

// Create creates a new session
func (r *PostgresRepository) Create(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	query := `
		INSERT INTO sessions (
			user_id, jti, issued_at, expires_at, ip_address, user_agent
		) VALUES (
			$1, $2, NOW(), $3, $4, $5
		) RETURNING
			id, user_id, jti, issued_at, expires_at, revoked_at,
			ip_address, user_agent, created_at
	`

	session := &Session{}
	var revokedAt sql.NullTime

	err := r.pool.QueryRow(ctx, query,
		req.UserID,
		req.JTI,
		req.ExpiresAt,
		req.IPAddress,
		req.UserAgent,
	).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.IssuedAt,
		&session.ExpiresAt,
		&revokedAt,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if revokedAt.Valid {
		session.RevokedAt = &revokedAt.Time
	}

	return session, nil
}

// GetByJTI retrieves a session by its JTI
func (r *PostgresRepository) GetByJTI(ctx context.Context, jti string) (*Session, error) {
	query := `
		SELECT
			id, user_id, jti, issued_at, expires_at, revoked_at,
			ip_address, user_agent, created_at
		FROM sessions
		WHERE jti = $1
	`

	session := &Session{}
	var revokedAt sql.NullTime

	err := r.pool.QueryRow(ctx, query, jti).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.IssuedAt,
		&session.ExpiresAt,
		&revokedAt,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if revokedAt.Valid {
		session.RevokedAt = &revokedAt.Time
	}

	return session, nil
}

// RevokeByJTI marks a session revoked by its JTI
func (r *PostgresRepository) RevokeByJTI(ctx context.Context, jti string) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE jti = $1 AND revoked_at IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, jti)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes every live session of a user
func (r *PostgresRepository) RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry
func (r *PostgresRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM sessions WHERE expires_at < NOW()`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
