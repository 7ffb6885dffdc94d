package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
)

// Authorizer gates a service operation. action completes the denial message, for
// example "add users".
type Authorizer interface {
	Authorize(ctx context.Context, actor *internal.Actor, action string) error
}

// PermissionPolicy allows callers holding a named permission, directly or via their role.
type PermissionPolicy struct {
	checker    PermissionChecker
	permission string
	logger     *slog.Logger
}

func NewPermissionPolicy(checker PermissionChecker, permission string, logger *slog.Logger) *PermissionPolicy {
	return &PermissionPolicy{checker: checker, permission: permission, logger: logger}
}

func (p *PermissionPolicy) Authorize(ctx context.Context, actor *internal.Actor, action string) error {
	allowed, err := p.checker.HasPermission(ctx, actor, p.permission)
	if err != nil {
		p.logger.ErrorContext(ctx, "authorization check failed", "error", err, "permission", p.permission)
		return internal.NewInternalError("authorization check failed", err)
	}
	if !allowed {
		p.logger.WarnContext(ctx, "access denied: missing permission",
			"user_id", actorID(actor),
			"required_permission", p.permission)
		return internal.NewForbiddenError(fmt.Sprintf("Unauthorized. You lack permission to %s.", action), internal.ErrCodeInsufficientPrivilege)
	}
	return nil
}

// RolePolicy allows callers whose role is one of roles. It never consults permissions.
type RolePolicy struct {
	roles  []role.Role
	logger *slog.Logger
}

func NewRolePolicy(logger *slog.Logger, roles ...role.Role) *RolePolicy {
	return &RolePolicy{roles: roles, logger: logger}
}

func (p *RolePolicy) Authorize(ctx context.Context, actor *internal.Actor, action string) error {
	if actor != nil {
		for _, r := range p.roles {
			if actor.Role == r {
				return nil
			}
		}
	}

	p.logger.WarnContext(ctx, "access denied: role not allowed",
		"user_id", actorID(actor),
		"required_roles", p.roles)
	return internal.NewForbiddenError(fmt.Sprintf("Unauthorized. Only %s can %s.", p.describeRoles(), action), internal.ErrCodeInsufficientPrivilege)
}

func (p *RolePolicy) describeRoles() string {
	names := make([]string, len(p.roles))
	for i, r := range p.roles {
		names[i] = r.String() + "s"
	}
	return strings.Join(names, " or ")
}

func actorID(actor *internal.Actor) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
