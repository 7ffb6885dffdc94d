package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/transport"
	"github.com/frahmantamala/hospital-admin/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	AddUser(ctx context.Context, actor *internal.Actor, dto AddUserDTO) (*User, error)
	ListUsersByRole(ctx context.Context, actor *internal.Actor, roleName string) ([]Summary, error)
	DeleteUser(ctx context.Context, actor *internal.Actor, id int64) error
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

// AddUser handles POST /admin/users
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var dto AddUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.AddUser(r.Context(), h.ActorFromRequest(r), dto)
	if err != nil {
		h.Logger.Warn("AddUser: request rejected", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, UserResponse{
		Message: "User added successfully. OTP sent to the user's email.",
		User:    u,
	})
}

// ListUsersByRole handles GET /admin/users/{role}
func (h *Handler) ListUsersByRole(w http.ResponseWriter, r *http.Request) {
	roleName := chi.URLParam(r, "role")

	users, err := h.Service.ListUsersByRole(r.Context(), h.ActorFromRequest(r), roleName)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{
		Message: fmt.Sprintf("Users with role '%s' retrieved successfully.", roleName),
		Users:   users,
	})
}

// DeleteUser handles DELETE /admin/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.Int64URLParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), h.ActorFromRequest(r), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully."})
}
