package organization

import (
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-org/pkg/user"
)

// ToDTO maps a persisted organization, including its user collection, to the
// external shape.
func ToDTO(entity Organization) OrganizationDTO {
	dto := OrganizationDTO{}
	copier.Copy(&dto, &entity)
	dto.ID = entity.ID.String()
	dto.Users = make([]user.UserDTO, 0, len(entity.Users))
	for _, member := range entity.Users {
		dto.Users = append(dto.Users, user.ToDTO(member))
	}
	return dto
}

// FromDTO maps the external shape onto an entity. The user collection is
// owned by the users resource and never written through organizations.
func FromDTO(dto OrganizationDTO) Organization {
	return Organization{
		Name: dto.Name,
	}
}
