package auth

import "github.com/frahmantamala/hospital-admin/internal/core/common/validation"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d LoginDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}
