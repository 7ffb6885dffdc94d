package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/transport"
	"github.com/frahmantamala/hospital-admin/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolveActor(ctx context.Context, claims *Claims) (*internal.Actor, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// AuthMiddleware resolves the bearer token to an Actor and stores it in the request
// context. Requests without a valid token stop here with 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.ErrMissingToken)
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token validation failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		actor, err := h.Service.ResolveActor(r.Context(), claims)
		if err != nil {
			h.Logger.Warn("auth middleware: failed to resolve actor", "subject", claims.Subject, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithActor(r.Context(), actor)
		ctx = logger.Annotate(ctx, "actor_id", actor.ID, "actor_role", actor.Role.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
