package user

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-org/pkg/pagination"
	"github.com/tendant/simple-org/pkg/utils"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "org_db"
	dbUser := "org"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "org_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func seedUser(t *testing.T, repo *PostgresRepository, email, name, role string) *User {
	t.Helper()
	created, err := repo.Create(context.Background(), User{
		Email:    email,
		Password: "opaque-credential",
		Role:     role,
		Name:     utils.ToNullString(name),
	})
	require.NoError(t, err)
	return created
}

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewPostgresRepository(pool)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		created := seedUser(t, repo, "alice@example.com", "Alice", RoleAdmin)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "Alice", created.Name.String)

		found, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", found.Email)

		byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("list with pagination", func(t *testing.T) {
		seedUser(t, repo, "bob@example.com", "Bob", RoleUser)
		seedUser(t, repo, "carol@example.com", "Carol", RoleUser)
		seedUser(t, repo, "dave@example.com", "Dave", RoleUser)

		req, err := pagination.PageRequest{Page: 0, Limit: 2}.Normalize(DefaultSortField, Columns)
		require.NoError(t, err)

		docs, count, err := repo.List(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
		require.Len(t, docs, 2)
		assert.Equal(t, "Alice", docs[0].Name.String)
		assert.Equal(t, "Bob", docs[1].Name.String)

		req, err = pagination.PageRequest{Page: 0, Limit: 10, Filter: "aro", Field: "name"}.Normalize(DefaultSortField, Columns)
		require.NoError(t, err)

		docs, count, err = repo.List(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, "Carol", docs[0].Name.String)
	})

	t.Run("update keeps credential when blank", func(t *testing.T) {
		created := seedUser(t, repo, "erin@example.com", "Erin", RoleEditor)

		updated, err := repo.Update(ctx, created.ID, User{
			Email: "erin@example.com",
			Role:  RoleAdmin,
			Name:  utils.ToNullString("Erin Updated"),
		})
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, updated.Role)
		assert.Equal(t, "Erin Updated", updated.Name.String)
		assert.Equal(t, "opaque-credential", updated.Password)
	})

	t.Run("update unknown", func(t *testing.T) {
		_, err := repo.Update(ctx, uuid.New(), User{Email: "ghost@example.com", Role: RoleUser})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("set email verified", func(t *testing.T) {
		created := seedUser(t, repo, "frank@example.com", "Frank", RoleUser)
		assert.False(t, created.EmailVerified)

		require.NoError(t, repo.SetEmailVerified(ctx, "frank@example.com"))

		found, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, found.EmailVerified)

		assert.ErrorIs(t, repo.SetEmailVerified(ctx, "nobody@example.com"), ErrUserNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		created := seedUser(t, repo, "gail@example.com", "Gail", RoleUser)

		affected, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		affected, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})
}
