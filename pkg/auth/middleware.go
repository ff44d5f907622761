package auth

import (
	"context"
	"net/http"

	"github.com/tendant/simple-org/pkg/apierror"
)

type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "auth context value " + k.name
}

// IdentityKey locates the authenticated Identity on the request context
var IdentityKey = &contextKey{"Identity"}

// IdentityFromContext returns the authenticated identity, if the request
// passed through RequireScopes.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*Identity)
	return identity, ok
}

// Middleware applies the Authenticator to chi route groups and writes
// authentication failures through the error pipeline.
type Middleware struct {
	authenticator *Authenticator
	errWriter     *apierror.Writer
}

// NewMiddleware creates the route middleware around an Authenticator
func NewMiddleware(authenticator *Authenticator, errWriter *apierror.Writer) *Middleware {
	return &Middleware{
		authenticator: authenticator,
		errWriter:     errWriter,
	}
}

// RequireScopes authenticates the request and requires the caller's role to
// be among scopes. An empty scope list only requires authentication.
func (m *Middleware) RequireScopes(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := m.authenticator.Authenticate(r, SecuritySchemeJWT, scopes)
			if err != nil {
				m.errWriter.Respond(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			ctx = apierror.WithRequestUser(ctx, identity.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
