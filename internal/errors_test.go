package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/hospital-admin/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	Describe("status codes", func() {
		DescribeTable("should map each error kind to its HTTP status",
			func(appErr *internal.AppError, status int) {
				Expect(appErr.StatusCode).To(Equal(status))
			},
			Entry("validation", internal.NewValidationError("bad", internal.ErrCodeValidationFailed), http.StatusBadRequest),
			Entry("conflict is reported as bad request", internal.ErrRoleBindingExists, http.StatusBadRequest),
			Entry("not found", internal.ErrPermissionNotFound, http.StatusNotFound),
			Entry("unauthorized", internal.ErrMissingToken, http.StatusUnauthorized),
			Entry("forbidden", internal.ErrSelfDelete, http.StatusForbidden),
			Entry("internal", internal.NewInternalError("boom", nil), http.StatusInternalServerError),
		)
	})

	Describe("Error", func() {
		It("should prefer the first field message for validation errors", func() {
			appErr := internal.NewValidationFieldError("name", "name has already been taken", internal.ErrCodeNameTaken)
			Expect(appErr.Error()).To(Equal("name has already been taken"))
			Expect(appErr.Message).To(Equal("Validation failed"))
		})

		It("should append the cause when there is one", func() {
			appErr := internal.NewInternalError("failed to load", errors.New("connection reset"))
			Expect(appErr.Error()).To(Equal("failed to load: connection reset"))
			Expect(errors.Unwrap(appErr)).To(MatchError("connection reset"))
		})
	})

	Describe("GetDetailedMessage", func() {
		It("should join every field message", func() {
			appErr := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
				WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
					{Field: "email", Message: "email is required"},
					{Field: "password", Message: "password is required"},
				}})
			Expect(appErr.GetDetailedMessage()).To(Equal("email is required; password is required"))
		})

		It("should fall back to the message without details", func() {
			Expect(internal.ErrUserNotFound.GetDetailedMessage()).To(Equal("User not found."))
		})
	})

	Describe("IsAppError", func() {
		It("should find an AppError through wrapping", func() {
			wrapped := fmt.Errorf("assign: %w", internal.ErrRoleBindingExists)

			appErr, ok := internal.IsAppError(wrapped)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeBindingExists))
		})

		It("should reject plain errors", func() {
			_, ok := internal.IsAppError(errors.New("plain"))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ToHTTPResponse", func() {
		It("should wrap the error in the response envelope without the cause", func() {
			status, body := internal.NewInternalError("internal server error", errors.New("secret dsn")).ToHTTPResponse()
			Expect(status).To(Equal(http.StatusInternalServerError))

			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(MatchJSON(`{"error":{"type":"INTERNAL_ERROR","code":"INTERNAL_ERROR","message":"internal server error"}}`))
		})

		It("should include validation details", func() {
			_, body := internal.NewValidationFieldError("role", "role is invalid", internal.ErrCodeInvalidRole).ToHTTPResponse()

			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(MatchJSON(`{
				"error": {
					"type": "VALIDATION_ERROR",
					"code": "VALIDATION_FAILED",
					"message": "Validation failed",
					"details": {"errors": [{"field": "role", "message": "role is invalid", "code": "INVALID_ROLE"}]}
				}
			}`))
		})
	})
})
