package user

import "github.com/frahmantamala/hospital-admin/internal/core/common/validation"

// AddUserDTO creates a staff account. Admin accounts cannot be created through it.
type AddUserDTO struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,operational_role"`
}

func (d AddUserDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type UserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type UsersResponse struct {
	Message string    `json:"message"`
	Users   []Summary `json:"users"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
