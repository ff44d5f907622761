package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/crypto"
	"github.com/tendant/simple-org/pkg/pagination"
	"github.com/tendant/simple-org/pkg/utils"
)

func newTestService(t *testing.T) (*Service, *crypto.Service) {
	t.Helper()
	cryptoService, err := crypto.NewService("test-secret")
	require.NoError(t, err)
	return NewService(NewInMemRepository(), cryptoService), cryptoService
}

func createUser(t *testing.T, svc *Service, email, name, role string) UserDTO {
	t.Helper()
	created, err := svc.Create(context.Background(), UserDTO{
		Email:    email,
		Password: "hunter2",
		Role:     role,
		Name:     utils.StringPtr(name),
	})
	require.NoError(t, err)
	return created
}

func TestCreateUser(t *testing.T) {
	svc, cryptoService := newTestService(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		created := createUser(t, svc, "alice@example.com", "Alice", RoleAdmin)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "alice@example.com", created.Email)
		assert.Empty(t, created.Password)

		// The stored credential is encrypted, not plaintext
		entity, err := svc.repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter2", entity.Password)
		plain, err := cryptoService.Decrypt(entity.Password)
		require.NoError(t, err)
		assert.Equal(t, "hunter2", plain)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Create(ctx, UserDTO{})
		require.Error(t, err)

		apiErr, ok := err.(*apierror.Error)
		require.True(t, ok)
		assert.Equal(t, 422, apiErr.StatusCode)
		assert.Contains(t, apiErr.Fields, "email")
		assert.Contains(t, apiErr.Fields, "password")
		assert.Contains(t, apiErr.Fields, "role")
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.Create(ctx, UserDTO{Email: "x@y.z", Password: "pw", Role: "superadmin"})
		require.Error(t, err)

		apiErr, ok := err.(*apierror.Error)
		require.True(t, ok)
		assert.Contains(t, apiErr.Fields, "role")
	})
}

func TestGetUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := createUser(t, svc, "bob@example.com", "Bob", RoleUser)

	t.Run("found", func(t *testing.T) {
		dto, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", dto.Email)
		assert.Empty(t, dto.Password)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(ctx, uuid.NewString())
		require.Error(t, err)

		apiErr, ok := err.(*apierror.Error)
		require.True(t, ok)
		assert.Equal(t, 404, apiErr.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.Get(ctx, "not-a-uuid")
		require.Error(t, err)

		apiErr, ok := err.(*apierror.Error)
		require.True(t, ok)
		assert.Equal(t, 400, apiErr.StatusCode)
	})
}

func TestGetPaginatedUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"Charlie", "Alice", "Bob", "Dave", "Eve"} {
		createUser(t, svc, name+"@example.com", name, RoleUser)
	}

	t.Run("sorted page with bookkeeping", func(t *testing.T) {
		result, err := svc.GetPaginated(ctx, pagination.PageRequest{Page: 0, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, result.Count)
		assert.Equal(t, 3, result.TotalPages)
		require.Len(t, result.Docs, 2)
		assert.Equal(t, "Alice", *result.Docs[0].Name)
		assert.Equal(t, "Bob", *result.Docs[1].Name)
	})

	t.Run("second page", func(t *testing.T) {
		result, err := svc.GetPaginated(ctx, pagination.PageRequest{Page: 1, Limit: 2})
		require.NoError(t, err)
		require.Len(t, result.Docs, 2)
		assert.Equal(t, "Charlie", *result.Docs[0].Name)
	})

	t.Run("descending", func(t *testing.T) {
		result, err := svc.GetPaginated(ctx, pagination.PageRequest{Page: 0, Limit: 2, Sort: "desc"})
		require.NoError(t, err)
		assert.Equal(t, "Eve", *result.Docs[0].Name)
	})

	t.Run("filter narrows count", func(t *testing.T) {
		result, err := svc.GetPaginated(ctx, pagination.PageRequest{Page: 0, Limit: 10, Filter: "li"})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Count) // Alice, Charlie
		assert.Equal(t, 1, result.TotalPages)
	})

	t.Run("invalid limit rejected before any query", func(t *testing.T) {
		_, err := svc.GetPaginated(ctx, pagination.PageRequest{Page: 0, Limit: 0})
		require.Error(t, err)

		apiErr, ok := err.(*apierror.Error)
		require.True(t, ok)
		assert.Equal(t, 400, apiErr.StatusCode)
		assert.Contains(t, apiErr.Fields, "limit")
	})
}

func TestUpdateUser(t *testing.T) {
	svc, cryptoService := newTestService(t)
	ctx := context.Background()
	created := createUser(t, svc, "carol@example.com", "Carol", RoleEditor)

	t.Run("success returns re-read record", func(t *testing.T) {
		updated, err := svc.Update(ctx, created.ID, UserDTO{
			Email: "carol@example.com",
			Role:  RoleAdmin,
			Name:  utils.StringPtr("Caroline"),
		})
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, updated.Role)
		assert.Equal(t, "Caroline", *updated.Name)
	})

	t.Run("empty password keeps the stored credential", func(t *testing.T) {
		_, err := svc.Update(ctx, created.ID, UserDTO{
			Email: "carol@example.com",
			Role:  RoleAdmin,
		})
		require.NoError(t, err)

		entity, err := svc.repo.GetByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		plain, err := cryptoService.Decrypt(entity.Password)
		require.NoError(t, err)
		assert.Equal(t, "hunter2", plain)
	})

	t.Run("new password is re-encrypted", func(t *testing.T) {
		_, err := svc.Update(ctx, created.ID, UserDTO{
			Email:    "carol@example.com",
			Role:     RoleAdmin,
			Password: "swordfish",
		})
		require.NoError(t, err)

		entity, err := svc.repo.GetByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		plain, err := cryptoService.Decrypt(entity.Password)
		require.NoError(t, err)
		assert.Equal(t, "swordfish", plain)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.NewString(), UserDTO{Email: "x@y.z", Role: RoleUser})
		require.Error(t, err)

		apiErr, ok := err.(*apierror.Error)
		require.True(t, ok)
		assert.Equal(t, 404, apiErr.StatusCode)
	})
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := createUser(t, svc, "dan@example.com", "Dan", RoleUser)

	affected, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)

	// Second delete reports not found, not zero records
	_, err = svc.Delete(ctx, created.ID)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestResolveIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := createUser(t, svc, "erin@example.com", "Erin", RoleAdmin)

	id, err := uuid.Parse(created.ID)
	require.NoError(t, err)

	identity, err := svc.ResolveIdentity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created.ID, identity.ID)
	assert.Equal(t, "erin@example.com", identity.Email)
	assert.Equal(t, RoleAdmin, identity.Role)

	_, err = svc.ResolveIdentity(ctx, uuid.New())
	assert.Error(t, err)
}
