package verification

import "github.com/frahmantamala/hospital-admin/internal/core/common/validation"

type VerifyDTO struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

func (d VerifyDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type ResendDTO struct {
	Email string `json:"email" validate:"required,email"`
}

func (d ResendDTO) Validate() error {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}
	return nil
}

type MessageResponse struct {
	Message string `json:"message"`
}
