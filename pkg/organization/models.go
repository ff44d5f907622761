package organization

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-org/pkg/user"
)

// DefaultSortField is the pagination field used when none is requested
const DefaultSortField = "name"

// Columns whitelists the sortable/filterable fields and maps them to store
// columns.
var Columns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

// Organization is the persisted representation of an organization. Users are
// loaded through the relation, not stored inline.
type Organization struct {
	ID        uuid.UUID
	Name      string
	Users     []user.User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationDTO is the external-facing shape of an organization
type OrganizationDTO struct {
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name"`
	Users []user.UserDTO `json:"users"`
}
