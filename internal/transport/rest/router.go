package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hospital-admin/internal/auth"
	"github.com/frahmantamala/hospital-admin/internal/permission"
	"github.com/frahmantamala/hospital-admin/internal/transport/middleware"
	"github.com/frahmantamala/hospital-admin/internal/transport/swagger"
	"github.com/frahmantamala/hospital-admin/internal/user"
	"github.com/frahmantamala/hospital-admin/internal/verification"
	"github.com/frahmantamala/hospital-admin/pkg/metrics"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

// Handlers groups everything the router mounts. A nil handler leaves its routes out, a
// nil policy leaves its gate out.
type Handlers struct {
	Auth         *auth.Handler
	Verification *verification.Handler
	Permission   *permission.Handler
	User         *user.Handler
	Metrics      *metrics.Metrics

	ManagePermissions middleware.Authorizer
	AdminOnly         middleware.Authorizer
}

func gate(policy middleware.Authorizer, action string) func(http.Handler) http.Handler {
	if policy == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequirePolicy(policy, action)
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware)
		router.Handle("/metrics", h.Metrics.Handler())
	}

	router.Get("/openapi.yml", swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			if h.Auth != nil {
				sr.Post("/login", h.Auth.Login)
			}
			if h.Verification != nil {
				sr.Post("/verify-otp", h.Verification.VerifyOTP)
				sr.Post("/resend-otp", h.Verification.ResendOTP)
			}
		})

		if h.Auth == nil {
			return
		}

		// Routes are gated before the handler decodes anything. Services gate again for
		// callers that do not come through HTTP.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/admin", func(ar chi.Router) {
				if h.Permission != nil {
					ar.Group(func(mr chi.Router) {
						mr.Use(gate(h.ManagePermissions, permission.ManageAction))

						mr.Post("/permissions", h.Permission.CreatePermission)
						mr.Get("/permissions", h.Permission.ListPermissions)
						mr.Post("/permissions/assign", h.Permission.AssignToRole)
						mr.Delete("/permissions/revoke", h.Permission.RevokeFromRole)
						mr.Post("/permissions/users/assign", h.Permission.AssignToUser)
						mr.Delete("/permissions/users/revoke", h.Permission.RevokeFromUser)
						mr.Delete("/permissions/{id}", h.Permission.DeletePermission)
						mr.Get("/roles/{role}/permissions", h.Permission.ListRolePermissions)
					})
				}

				if h.User != nil {
					ar.With(gate(h.AdminOnly, user.AddAction)).Post("/users", h.User.AddUser)
					ar.With(gate(h.AdminOnly, user.ViewAction)).Get("/users/{role}", h.User.ListUsersByRole)
					ar.With(gate(h.AdminOnly, user.DeleteAction)).Delete("/users/{id}", h.User.DeleteUser)
				}
			})
		})
	})
}
