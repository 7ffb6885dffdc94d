package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Auth Handler", func() {
	var (
		handler   *auth.Handler
		tokenGen  *auth.JWTTokenGenerator
		protected http.Handler
		seen      *internal.Actor
	)

	BeforeEach(func() {
		tokenGen = auth.NewJWTTokenGenerator("test-secret-that-is-long-enough-123", 15*time.Minute)
		handler = auth.NewHandler(auth.NewService(newMockUserRepository(), tokenGen, testLogger))

		seen = nil
		protected = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = internal.ActorFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
	})

	Describe("Login", func() {
		It("should return a token for valid credentials", func() {
			body, _ := json.Marshal(map[string]string{"email": "admin@hospital.test", "password": "correct_password"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var tokens auth.AuthTokens
			Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(Succeed())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
		})

		It("should answer 401 for bad credentials", func() {
			body, _ := json.Marshal(map[string]string{"email": "admin@hospital.test", "password": "nope"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should answer 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("AuthMiddleware", func() {
		serve := func(header string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/permissions", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req.WithContext(context.Background()))
			return rec
		}

		It("should reject requests without a token", func() {
			rec := serve("")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring("MISSING_TOKEN"))
			Expect(seen).To(BeNil())
		})

		It("should reject a non-bearer scheme", func() {
			Expect(serve("Basic abc").Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject an invalid token", func() {
			Expect(serve("Bearer not-a-token").Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject a token whose user no longer exists", func() {
			token, _ := tokenGen.GenerateAccessToken("99", "gone@hospital.test")
			Expect(serve("Bearer " + token).Code).To(Equal(http.StatusUnauthorized))
		})

		It("should put the actor in the context", func() {
			token, _ := tokenGen.GenerateAccessToken("1", "admin@hospital.test")
			rec := serve("Bearer " + token)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(seen).NotTo(BeNil())
			Expect(seen.ID).To(Equal(int64(1)))
			Expect(seen.Email).To(Equal("admin@hospital.test"))
		})
	})
})
