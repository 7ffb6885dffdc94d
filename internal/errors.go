package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeNameTaken        ErrorCode = "NAME_TAKEN"
	ErrCodeEmailTaken       ErrorCode = "EMAIL_TAKEN"

	ErrCodePermissionNotFound    ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeNoPermissions         ErrorCode = "NO_PERMISSIONS"
	ErrCodeBindingNotFound       ErrorCode = "BINDING_NOT_FOUND"
	ErrCodeBindingExists         ErrorCode = "BINDING_EXISTS"
	ErrCodeUserNotFound          ErrorCode = "USER_NOT_FOUND"
	ErrCodeNoUsers               ErrorCode = "NO_USERS"
	ErrCodeSelfDelete            ErrorCode = "SELF_DELETE"
	ErrCodeInsufficientPrivilege ErrorCode = "INSUFFICIENT_PRIVILEGE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeMissingToken       ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidOTP         ErrorCode = "INVALID_OTP"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewConflictError reports a uniqueness clash on a binding. Clients of this API treat it
// like any other rejected input, so it is sent as 400 rather than 409.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

var (
	ErrPermissionNotFound = NewNotFoundError("Permission not found.", ErrCodePermissionNotFound)
	ErrNoPermissions      = NewNotFoundError("No permissions found.", ErrCodeNoPermissions)
	ErrRoleBindingMissing = NewNotFoundError("Permission not assigned to this role.", ErrCodeBindingNotFound)
	ErrUserBindingMissing = NewNotFoundError("Permission not assigned to this user.", ErrCodeBindingNotFound)
	ErrRoleBindingExists  = NewConflictError("Permission is already assigned to this role.", ErrCodeBindingExists)
	ErrUserBindingExists  = NewConflictError("Permission is already assigned to this user.", ErrCodeBindingExists)
	ErrUserNotFound       = NewNotFoundError("User not found.", ErrCodeUserNotFound)
	ErrNoUsersForRole     = NewNotFoundError("No users found for this role.", ErrCodeNoUsers)
	ErrInvalidRole        = NewValidationError("Invalid role specified.", ErrCodeInvalidRole)
	ErrSelfDelete         = NewForbiddenError("You cannot delete yourself.", ErrCodeSelfDelete)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrMissingToken       = NewUnauthorizedError("Missing authorization token", ErrCodeMissingToken)
	ErrInvalidOTP         = NewValidationError("Invalid or expired OTP.", ErrCodeInvalidOTP)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
