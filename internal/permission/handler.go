package permission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreatePermission(ctx context.Context, actor *internal.Actor, dto CreatePermissionDTO) (*Permission, error)
	ListPermissions(ctx context.Context, actor *internal.Actor) ([]*Permission, error)
	DeletePermission(ctx context.Context, actor *internal.Actor, id int64) (*Permission, error)
	AssignToRole(ctx context.Context, actor *internal.Actor, dto RoleBindingDTO) (*Permission, error)
	RevokeFromRole(ctx context.Context, actor *internal.Actor, dto RoleBindingDTO) (*Permission, error)
	ListRolePermissions(ctx context.Context, actor *internal.Actor, roleName string) ([]*Permission, error)
	AssignToUser(ctx context.Context, actor *internal.Actor, dto UserBindingDTO) (*Permission, error)
	RevokeFromUser(ctx context.Context, actor *internal.Actor, dto UserBindingDTO) (*Permission, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// CreatePermission handles POST /admin/permissions
func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var dto CreatePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.CreatePermission(r.Context(), h.ActorFromRequest(r), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, PermissionResponse{
		Message:    "Permission created successfully.",
		Permission: p,
	})
}

// ListPermissions handles GET /admin/permissions
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.Service.ListPermissions(r.Context(), h.ActorFromRequest(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PermissionsResponse{
		Message:     "Permissions retrieved successfully.",
		Permissions: permissions,
	})
}

// DeletePermission handles DELETE /admin/permissions/{id}
func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := h.Int64URLParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.DeletePermission(r.Context(), h.ActorFromRequest(r), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Permission '%s' deleted successfully.", p.Name),
	})
}

// AssignToRole handles POST /admin/permissions/assign
func (h *Handler) AssignToRole(w http.ResponseWriter, r *http.Request) {
	var dto RoleBindingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.AssignToRole(r.Context(), h.ActorFromRequest(r), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Permission '%s' assigned to role '%s' successfully.", p.Name, dto.Role),
	})
}

// RevokeFromRole handles DELETE /admin/permissions/revoke
func (h *Handler) RevokeFromRole(w http.ResponseWriter, r *http.Request) {
	var dto RoleBindingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.RevokeFromRole(r.Context(), h.ActorFromRequest(r), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Permission '%s' revoked from role '%s' successfully.", p.Name, dto.Role),
	})
}

// ListRolePermissions handles GET /admin/roles/{role}/permissions
func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleName := chi.URLParam(r, "role")

	permissions, err := h.Service.ListRolePermissions(r.Context(), h.ActorFromRequest(r), roleName)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PermissionsResponse{
		Message:     fmt.Sprintf("Permissions for role '%s' retrieved successfully.", roleName),
		Permissions: permissions,
	})
}

// AssignToUser handles POST /admin/permissions/users/assign
func (h *Handler) AssignToUser(w http.ResponseWriter, r *http.Request) {
	var dto UserBindingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.AssignToUser(r.Context(), h.ActorFromRequest(r), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Permission '%s' assigned to user %d successfully.", p.Name, dto.UserID),
	})
}

// RevokeFromUser handles DELETE /admin/permissions/users/revoke
func (h *Handler) RevokeFromUser(w http.ResponseWriter, r *http.Request) {
	var dto UserBindingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.RevokeFromUser(r.Context(), h.ActorFromRequest(r), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Permission '%s' revoked from user %d successfully.", p.Name, dto.UserID),
	})
}
