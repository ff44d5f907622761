package user

import (
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-org/pkg/utils"
)

// ToDTO maps a persisted user to its external shape. The stored credential
// is never copied out.
func ToDTO(entity User) UserDTO {
	dto := UserDTO{}
	copier.Copy(&dto, &entity)
	dto.ID = entity.ID.String()
	dto.Password = ""
	dto.Name = nil
	if entity.Name.Valid {
		dto.Name = utils.StringPtr(entity.Name.String)
	}
	dto.Phone = nil
	if entity.Phone.Valid {
		dto.Phone = utils.StringPtr(entity.Phone.String)
	}
	if entity.OrganizationID.Valid {
		dto.OrganizationID = utils.StringPtr(entity.OrganizationID.UUID.String())
	}
	return dto
}

// FromDTO maps an external user shape onto an entity. The id, when present,
// must already be a valid UUID; callers parse and validate it separately.
func FromDTO(dto UserDTO) User {
	entity := User{}
	copier.Copy(&entity, &dto)
	entity.ID = uuid.Nil
	if dto.Name != nil {
		entity.Name = utils.ToNullString(*dto.Name)
	}
	if dto.Phone != nil {
		entity.Phone = utils.ToNullString(*dto.Phone)
	}
	if dto.OrganizationID != nil {
		if orgID, err := uuid.Parse(*dto.OrganizationID); err == nil {
			entity.OrganizationID = uuid.NullUUID{UUID: orgID, Valid: true}
		}
	}
	return entity
}
