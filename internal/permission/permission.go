package permission

import (
	"time"

	permissionDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/permission"
)

type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewPermission(name string, description *string) *Permission {
	return &Permission{
		Name:        name,
		Description: description,
	}
}

func ToDataModel(p *Permission) *permissionDatamodel.Permission {
	return &permissionDatamodel.Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *permissionDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromDataModels(rows []*permissionDatamodel.Permission) []*Permission {
	out := make([]*Permission, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out
}
