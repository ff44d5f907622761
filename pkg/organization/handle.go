package organization

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-org/pkg/apierror"
	"github.com/tendant/simple-org/pkg/auth"
	"github.com/tendant/simple-org/pkg/pagination"
	"github.com/tendant/simple-org/pkg/user"
)

// Handle binds the organization service to HTTP
type Handle struct {
	orgService *Service
	errWriter  *apierror.Writer
}

// NewHandle creates the HTTP handle for organizations
func NewHandle(orgService *Service, errWriter *apierror.Writer) Handle {
	return Handle{
		orgService: orgService,
		errWriter:  errWriter,
	}
}

// Handler mounts the organization routes with their scope requirements
func Handler(h Handle, mw *auth.Middleware) http.Handler {
	r := chi.NewRouter()
	r.With(mw.RequireScopes(user.RoleAdmin)).Get("/", h.GetOrganizations)
	r.With(mw.RequireScopes(user.RoleAdmin)).Post("/", h.CreateOrganization)
	r.With(mw.RequireScopes(user.RoleAdmin, user.RoleUser)).Get("/{id}", h.GetOrganization)
	r.With(mw.RequireScopes(user.RoleAdmin)).Put("/{id}", h.UpdateOrganization)
	r.With(mw.RequireScopes(user.RoleAdmin)).Delete("/{id}", h.DeleteOrganization)
	return r
}

// Get a page of organizations
// (GET /organization)
func (h Handle) GetOrganizations(w http.ResponseWriter, r *http.Request) {
	result, err := h.orgService.GetPaginated(r.Context(), pagination.FromQuery(r))
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Get a single organization with its users
// (GET /organization/{id})
func (h Handle) GetOrganization(w http.ResponseWriter, r *http.Request) {
	dto, err := h.orgService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, dto)
}

// Create a new organization
// (POST /organization)
func (h Handle) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var dto OrganizationDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		h.errWriter.Respond(w, r, apierror.BadRequest("Invalid request body", nil))
		return
	}

	created, err := h.orgService.Create(r.Context(), dto)
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}

// Update an existing organization
// (PUT /organization/{id})
func (h Handle) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var dto OrganizationDTO
	if err := render.DecodeJSON(r.Body, &dto); err != nil {
		h.errWriter.Respond(w, r, apierror.BadRequest("Invalid request body", nil))
		return
	}

	updated, err := h.orgService.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, updated)
}

// Delete an organization
// (DELETE /organization/{id})
func (h Handle) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	affected, err := h.orgService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errWriter.Respond(w, r, err)
		return
	}
	render.JSON(w, r, fmt.Sprintf("Successfully deleted %d record(s)", affected))
}
