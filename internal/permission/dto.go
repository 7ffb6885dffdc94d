package permission

import (
	"github.com/frahmantamala/hospital-admin/internal/core/common/validation"
)

type CreatePermissionDTO struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

func (d CreatePermissionDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

// RoleBindingDTO names a permission and a role for assign and revoke.
type RoleBindingDTO struct {
	PermissionID int64  `json:"permission_id" validate:"required,gt=0"`
	Role         string `json:"role" validate:"required,role"`
}

func (d RoleBindingDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type UserBindingDTO struct {
	PermissionID int64 `json:"permission_id" validate:"required,gt=0"`
	UserID       int64 `json:"user_id" validate:"required,gt=0"`
}

func (d UserBindingDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type PermissionResponse struct {
	Message    string      `json:"message"`
	Permission *Permission `json:"permission"`
}

type PermissionsResponse struct {
	Message     string        `json:"message"`
	Permissions []*Permission `json:"permissions"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
