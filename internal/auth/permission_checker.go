package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hospital-admin/internal"
)

// ManagePermissions gates every permission and binding management operation.
const ManagePermissions = "manage_permissions"

type PermissionChecker interface {
	HasPermission(ctx context.Context, actor *internal.Actor, permission string) (bool, error)
}

// DefaultPermissionChecker resolves a permission against storage on every call, so a
// grant or revoke is visible to the very next check.
type DefaultPermissionChecker struct {
	store  PermissionStore
	logger *slog.Logger
}

func NewPermissionChecker(store PermissionStore, logger *slog.Logger) *DefaultPermissionChecker {
	return &DefaultPermissionChecker{store: store, logger: logger}
}

// HasPermission checks a direct user grant first and falls back to the actor's role.
// Matching on the permission name is exact.
func (c *DefaultPermissionChecker) HasPermission(ctx context.Context, actor *internal.Actor, permission string) (bool, error) {
	if actor == nil {
		return false, nil
	}

	direct, err := c.store.HasDirectPermission(ctx, actor.ID, permission)
	if err != nil {
		return false, fmt.Errorf("check direct permission: %w", err)
	}
	if direct {
		c.logger.DebugContext(ctx, "permission granted directly", "user_id", actor.ID, "permission", permission)
		return true, nil
	}

	viaRole, err := c.store.HasRolePermission(ctx, actor.Role.String(), permission)
	if err != nil {
		return false, fmt.Errorf("check role permission: %w", err)
	}
	if viaRole {
		c.logger.DebugContext(ctx, "permission granted by role", "user_id", actor.ID, "role", actor.Role, "permission", permission)
	}
	return viaRole, nil
}
