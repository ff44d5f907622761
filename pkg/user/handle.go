package user

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/auth"
	"github.com/tendant/simple-org/pkg/pagination"
)

// Handle binds the user service to HTTP
type Handle struct {
	userService *Service
	errWriter   *apierror.Writer
}

// NewHandle creates the HTTP handle for users
func NewHandle(userService *Service, errWriter *apierror.Writer) Handle {
	return Handle{
		userService: userService,
		errWriter:   errWriter,
	}
}

// Handler mounts the user routes with their scope requirements
func Handler(h Handle, mw *auth.Middleware) http.Handler {
	r := chi.NewRouter()
	r.With(mw.RequireScopes(RoleAdmin)).Get("/", h.GetUsers)
	r.With(mw.RequireScopes(RoleAdmin)).Post("/", h.CreateUser)
	r.With(mw.RequireScopes(RoleAdmin, RoleUser)).Get("/{id}", h.GetUser)
	r.With(mw.RequireScopes(RoleAdmin)).Put("/{id}", h.UpdateUser)
	r.With(mw.RequireScopes(RoleAdmin)).Delete("/{id}", h.DeleteUser)
	return r
}

// Get a page of users
// (GET /users)
func (h Handle) GetUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.userService.GetPaginated(r.Context(), pagination.FromQuery(r))
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Get a single user
// (GET /users/{id})
func (h Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	dto, err := h.userService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, dto)
}

// Create a new user
// (POST /users)
func (h Handle) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto UserDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		h.errWriter.Respond(w, r, apierror.BadRequest("Invalid request body", nil))
		return
	}

	created, err := h.userService.Create(r.Context(), dto)
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

// Update an existing user
// (PUT /users/{id})
func (h Handle) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var dto UserDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		h.errWriter.Respond(w, r, apierror.BadRequest("Invalid request body", nil))
		return
	}

	updated, err := h.userService.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, updated)
}

// Delete a user
// (DELETE /users/{id})
func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	affected, err := h.userService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, fmt.Sprintf("Successfully deleted %d record(s)", affected))
}
