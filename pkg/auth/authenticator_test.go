package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/sessions"
)

type stubResolver struct {
	identities map[uuid.UUID]*Identity
}

func (s *stubResolver) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*Identity, error) {
	identity, ok := s.identities[userID]
	if !ok {
		return nil, apierror.Unauthorized("unknown user")
	}
	copied := *identity
	return &copied, nil
}

type fixture struct {
	tokens        *TokenService
	sessions      *sessions.Service
	resolver      *stubResolver
	authenticator *Authenticator
}

func newFixture(t *testing.T, tokenFallback bool) *fixture {
	t.Helper()
	tokens := NewTokenService("test-secret", "simple-org-test", time.Hour)
	sessionService := sessions.NewService(sessions.NewInMemRepository())
	resolver := &stubResolver{identities: map[uuid.UUID]*Identity{}}
	return &fixture{
		tokens:        tokens,
		sessions:      sessionService,
		resolver:      resolver,
		authenticator: NewAuthenticator(tokens, sessionService, resolver, tokenFallback),
	}
}

// login issues a token, registers its session, and makes the user resolvable
func (f *fixture) login(t *testing.T, role string) (string, string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, jti, expiresAt, err := f.tokens.IssueToken(Identity{
		ID:    userID.String(),
		Email: "caller@example.com",
		Role:  role,
	})
	require.NoError(t, err)

	_, err = f.sessions.CreateSession(context.Background(), sessions.CreateSessionRequest{
		UserID:    userID,
		JTI:       jti,
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)

	f.resolver.identities[userID] = &Identity{
		ID:    userID.String(),
		Email: "caller@example.com",
		Role:  role,
	}
	return token, jti, userID
}

func bearerRequest(token string) *http.Request {
	r := httptest.NewRequest("GET", "/users", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func requireUnauthorized(t *testing.T, err error) *apierror.Error {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
	return apiErr
}

func TestAuthenticateSession(t *testing.T) {
	f := newFixture(t, false)
	token, _, userID := f.login(t, "admin")

	identity, err := f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"admin"})
	require.NoError(t, err)
	assert.Equal(t, userID.String(), identity.ID)
	assert.Equal(t, "admin", identity.Role)
	assert.Equal(t, ProvenanceSession, identity.Provenance)
}

func TestAuthenticateRoleFromUserRecord(t *testing.T) {
	// The session path trusts the user record, not the token claims. A role
	// change after login takes effect on the next request.
	f := newFixture(t, false)
	token, _, userID := f.login(t, "admin")
	f.resolver.identities[userID].Role = "user"

	_, err := f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"admin"})
	requireUnauthorized(t, err)

	identity, err := f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"user"})
	require.NoError(t, err)
	assert.Equal(t, "user", identity.Role)
}

func TestAuthenticateNoToken(t *testing.T) {
	f := newFixture(t, true)
	r := httptest.NewRequest("GET", "/users", nil)

	_, err := f.authenticator.Authenticate(r, SecuritySchemeJWT, []string{"admin"})
	apiErr := requireUnauthorized(t, err)
	assert.Equal(t, "No token provided", apiErr.Message)
}

func TestAuthenticateUnknownScheme(t *testing.T) {
	f := newFixture(t, true)
	token, _, _ := f.login(t, "admin")

	_, err := f.authenticator.Authenticate(bearerRequest(token), "api_key", []string{"admin"})
	requireUnauthorized(t, err)
}

func TestAuthenticateScopeMismatch(t *testing.T) {
	f := newFixture(t, false)
	token, _, _ := f.login(t, "user")

	_, err := f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"admin"})
	apiErr := requireUnauthorized(t, err)
	assert.Equal(t, "Token does not contain required scope", apiErr.Message)
}

func TestAuthenticateEmptyScopes(t *testing.T) {
	f := newFixture(t, false)
	token, _, _ := f.login(t, "user")

	identity, err := f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, nil)
	require.NoError(t, err)
	assert.Equal(t, "user", identity.Role)
}

func TestAuthenticateRevokedSession(t *testing.T) {
	t.Run("without fallback", func(t *testing.T) {
		f := newFixture(t, false)
		token, jti, _ := f.login(t, "admin")
		require.NoError(t, f.sessions.RevokeSession(context.Background(), jti))

		_, err := f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"admin"})
		requireUnauthorized(t, err)
	})

	t.Run("with fallback the verified claims are trusted", func(t *testing.T) {
		f := newFixture(t, true)
		token, jti, userID := f.login(t, "admin")
		require.NoError(t, f.sessions.RevokeSession(context.Background(), jti))

		identity, err := f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"admin"})
		require.NoError(t, err)
		assert.Equal(t, userID.String(), identity.ID)
		assert.Equal(t, ProvenanceToken, identity.Provenance)
	})
}

func TestAuthenticateExpiredToken(t *testing.T) {
	// Expiry fails both stages: the fallback never accepts what signature
	// verification rejects
	f := newFixture(t, true)
	expired := NewTokenService("test-secret", "simple-org-test", -time.Hour)
	token, _, _, err := expired.IssueToken(Identity{ID: uuid.NewString(), Role: "admin"})
	require.NoError(t, err)

	_, err = f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"admin"})
	requireUnauthorized(t, err)
}

func TestAuthenticateForeignSignature(t *testing.T) {
	f := newFixture(t, true)
	foreign := NewTokenService("other-secret", "simple-org-test", time.Hour)
	token, _, _, err := foreign.IssueToken(Identity{ID: uuid.NewString(), Role: "admin"})
	require.NoError(t, err)

	_, err = f.authenticator.Authenticate(bearerRequest(token), SecuritySchemeJWT, []string{"admin"})
	requireUnauthorized(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("authorization header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer abc")
		assert.Equal(t, "abc", TokenFromRequest(r))
	})

	t.Run("query string", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/?jwt=abc", nil)
		assert.Equal(t, "abc", TokenFromRequest(r))
	})

	t.Run("legacy header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Access-Token", "abc")
		assert.Equal(t, "abc", TokenFromRequest(r))
	})

	t.Run("body snapshot", func(t *testing.T) {
		var got string
		handler := apierror.BodySnapshot(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = TokenFromRequest(r)
		}))
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"token":"abc"}`))
		handler.ServeHTTP(httptest.NewRecorder(), r)
		assert.Equal(t, "abc", got)
	})

	t.Run("header wins over query", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/?jwt=from-query", nil)
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-header", TokenFromRequest(r))
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, "", TokenFromRequest(httptest.NewRequest("GET", "/", nil)))
	})
}

func TestMiddlewareRequireScopes(t *testing.T) {
	f := newFixture(t, false)
	errWriter := apierror.NewWriter("development")
	mw := NewMiddleware(f.authenticator, errWriter)

	var seen *Identity
	handler := mw.RequireScopes("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("authorized", func(t *testing.T) {
		token, _, userID := f.login(t, "admin")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, bearerRequest(token))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, userID.String(), seen.ID)
	})

	t.Run("rejected", func(t *testing.T) {
		seen = nil
		token, _, _ := f.login(t, "user")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, bearerRequest(token))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, seen)
	})
}
