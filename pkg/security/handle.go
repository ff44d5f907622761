package security

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/auth"
	"github.com/tendant/simple-org/pkg/user"
)

// Handle binds the security service to HTTP
type Handle struct {
	securityService *Service
	tokens          *auth.TokenService
	errWriter       *apierror.Writer
}

// NewHandle creates the HTTP handle for the security routes
func NewHandle(securityService *Service, tokens *auth.TokenService, errWriter *apierror.Writer) Handle {
	return Handle{
		securityService: securityService,
		tokens:          tokens,
		errWriter:       errWriter,
	}
}

// Handler mounts the security routes. Login, signup and verify are public;
// userinfo and signout require an authenticated caller.
func Handler(h Handle, mw *auth.Middleware) http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/signup", h.Signup)
	r.Get("/verify", h.Verify)
	r.With(mw.RequireScopes(user.RoleAdmin)).Get("/userinfo", h.UserInfo)
	r.With(mw.RequireScopes()).Post("/signout", h.Signout)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate a credential and open a session
// (POST /security/login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errWriter.Respond(w, r, apierror.BadRequest("Invalid request body", nil))
		return
	}

	result, err := h.securityService.Login(r.Context(), req.Email, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Register a new user
// (POST /security/signup)
func (h Handle) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		h.errWriter.Respond(w, r, apierror.BadRequest("Invalid request body", nil))
		return
	}

	created, err := h.securityService.Signup(r.Context(), dto)
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

// Confirm an email verification link
// (GET /security/verify?token=...)
func (h Handle) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.errWriter.Respond(w, r, apierror.BadRequest("Missing verification token", map[string]apierror.FieldError{
			"token": {Message: "required"},
		}))
		return
	}

	message, err := h.securityService.Verify(r.Context(), token)
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.PlainText(w, r, message)
}

// Echo the authenticated identity
// (GET /security/userinfo)
func (h Handle) UserInfo(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.errWriter.Respond(w, r, apierror.Unauthorized("No authenticated identity"))
		return
	}
	render.JSON(w, r, identity)
}

// Revoke the session behind the presented token
// (POST /security/signout)
func (h Handle) Signout(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.ParseToken(auth.TokenFromRequest(r))
	if err != nil {
		h.errWriter.Respond(w, r, apierror.Unauthorized("No token provided").WrapErr(err))
		return
	}

	if err := h.securityService.Signout(r.Context(), claims.ID); err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, "Signed out")
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
