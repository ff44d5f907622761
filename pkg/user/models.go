package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Roles assignable to users. Endpoints declare which of these they require.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// ValidRole reports whether role is one of the assignable roles
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor || role == RoleUser
}

// DefaultSortField is the pagination field used when none is requested
const DefaultSortField = "name"

// Columns whitelists the sortable/filterable fields and maps them to store
// columns.
var Columns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"phone":      "phone",
	"created_at": "created_at",
}

// User is the persisted representation of a user. Password holds the opaque
// encrypted credential, never the plaintext.
type User struct {
	ID             uuid.UUID
	Email          string
	Password       string
	Role           string
	Name           sql.NullString
	Phone          sql.NullString
	OrganizationID uuid.NullUUID
	EmailVerified  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserDTO is the external-facing shape of a user. Password is accepted on
// input and never populated on output.
type UserDTO struct {
	ID             string  `json:"id,omitempty"`
	Email          string  `json:"email"`
	Password       string  `json:"password,omitempty"`
	Role           string  `json:"role,omitempty"`
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	OrganizationID *string `json:"organization_id,omitempty"`
	EmailVerified  bool    `json:"email_verified,omitempty"`
}
