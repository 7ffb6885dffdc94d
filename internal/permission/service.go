package permission

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/core/common/dberr"
	permissionDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/permission"
	"github.com/frahmantamala/hospital-admin/internal/core/events"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
)

// ManageAction completes the denial message for every permission operation.
const ManageAction = "manage permissions"

type RepositoryAPI interface {
	Create(ctx context.Context, p *permissionDatamodel.Permission) error
	GetAll(ctx context.Context) ([]*permissionDatamodel.Permission, error)
	GetByID(ctx context.Context, id int64) (*permissionDatamodel.Permission, error)
	// Delete removes the permission together with every role and user binding to it.
	Delete(ctx context.Context, id int64) error
	AssignToRole(ctx context.Context, permissionID int64, roleName string) error
	RevokeFromRole(ctx context.Context, permissionID int64, roleName string) (bool, error)
	ListByRole(ctx context.Context, roleName string) ([]*permissionDatamodel.Permission, error)
	AssignToUser(ctx context.Context, permissionID, userID int64) error
	RevokeFromUser(ctx context.Context, permissionID, userID int64) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// Authorizer gates every operation of the service before any input is looked at.
type Authorizer interface {
	Authorize(ctx context.Context, actor *internal.Actor, action string) error
}

type Service struct {
	repo      RepositoryAPI
	authz     Authorizer
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, authz Authorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		authz:     authz,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreatePermission(ctx context.Context, actor *internal.Actor, dto CreatePermissionDTO) (*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := ToDataModel(NewPermission(dto.Name, dto.Description))
	if err := s.repo.Create(ctx, row); err != nil {
		if dberr.IsDuplicateKey(err) {
			return nil, internal.NewValidationFieldError("name", "name has already been taken", internal.ErrCodeNameTaken)
		}
		s.logger.Error("failed to create permission", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create permission", err)
	}

	s.logger.Info("permission created", "permission_id", row.ID, "name", row.Name, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewPermissionCreatedEvent(actor.ID, row.ID, row.Name))

	return FromDataModel(row), nil
}

// ListPermissions reports an empty table as ErrNoPermissions rather than an empty list.
func (s *Service) ListPermissions(ctx context.Context, actor *internal.Actor) ([]*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	if len(rows) == 0 {
		return nil, internal.ErrNoPermissions
	}

	return fromDataModels(rows), nil
}

func (s *Service) DeletePermission(ctx context.Context, actor *internal.Actor, id int64) (*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}

	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete permission", "permission_id", id, "error", err)
		return nil, internal.NewInternalError("failed to delete permission", err)
	}

	s.logger.Info("permission deleted", "permission_id", id, "name", row.Name, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewPermissionDeletedEvent(actor.ID, row.ID, row.Name))

	return FromDataModel(row), nil
}

// AssignToRole binds a permission to a role and returns the bound permission.
func (s *Service) AssignToRole(ctx context.Context, actor *internal.Actor, dto RoleBindingDTO) (*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.find(ctx, dto.PermissionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AssignToRole(ctx, row.ID, dto.Role); err != nil {
		if dberr.IsDuplicateKey(err) {
			return nil, internal.ErrRoleBindingExists
		}
		if dberr.IsForeignKeyViolation(err) {
			return nil, internal.ErrPermissionNotFound
		}
		s.logger.Error("failed to assign permission to role", "permission_id", row.ID, "role", dto.Role, "error", err)
		return nil, internal.NewInternalError("failed to assign permission", err)
	}

	s.logger.Info("permission assigned to role", "permission_id", row.ID, "role", dto.Role, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewPermissionAssignedEvent(actor.ID, row.ID, row.Name, dto.Role))

	return FromDataModel(row), nil
}

func (s *Service) RevokeFromRole(ctx context.Context, actor *internal.Actor, dto RoleBindingDTO) (*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.find(ctx, dto.PermissionID)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.RevokeFromRole(ctx, row.ID, dto.Role)
	if err != nil {
		s.logger.Error("failed to revoke permission from role", "permission_id", row.ID, "role", dto.Role, "error", err)
		return nil, internal.NewInternalError("failed to revoke permission", err)
	}
	if !removed {
		return nil, internal.ErrRoleBindingMissing
	}

	s.logger.Info("permission revoked from role", "permission_id", row.ID, "role", dto.Role, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewPermissionRevokedEvent(actor.ID, row.ID, row.Name, dto.Role))

	return FromDataModel(row), nil
}

func (s *Service) ListRolePermissions(ctx context.Context, actor *internal.Actor, roleName string) ([]*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}

	r, err := role.Parse(roleName)
	if err != nil {
		return nil, internal.ErrInvalidRole
	}

	rows, err := s.repo.ListByRole(ctx, r.String())
	if err != nil {
		s.logger.Error("failed to list role permissions", "role", roleName, "error", err)
		return nil, internal.NewInternalError("failed to list role permissions", err)
	}
	if len(rows) == 0 {
		return nil, internal.ErrNoPermissions
	}

	return fromDataModels(rows), nil
}

func (s *Service) AssignToUser(ctx context.Context, actor *internal.Actor, dto UserBindingDTO) (*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.find(ctx, dto.PermissionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, dto.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.AssignToUser(ctx, row.ID, dto.UserID); err != nil {
		if dberr.IsDuplicateKey(err) {
			return nil, internal.ErrUserBindingExists
		}
		if dberr.IsForeignKeyViolation(err) {
			return nil, internal.ErrUserNotFound
		}
		s.logger.Error("failed to grant permission to user", "permission_id", row.ID, "user_id", dto.UserID, "error", err)
		return nil, internal.NewInternalError("failed to assign permission", err)
	}

	s.logger.Info("permission granted to user", "permission_id", row.ID, "user_id", dto.UserID, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewUserPermissionGrantedEvent(actor.ID, row.ID, row.Name, strconv.FormatInt(dto.UserID, 10)))

	return FromDataModel(row), nil
}

func (s *Service) RevokeFromUser(ctx context.Context, actor *internal.Actor, dto UserBindingDTO) (*Permission, error) {
	if err := s.authz.Authorize(ctx, actor, ManageAction); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.find(ctx, dto.PermissionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, dto.UserID); err != nil {
		return nil, err
	}

	removed, err := s.repo.RevokeFromUser(ctx, row.ID, dto.UserID)
	if err != nil {
		s.logger.Error("failed to revoke permission from user", "permission_id", row.ID, "user_id", dto.UserID, "error", err)
		return nil, internal.NewInternalError("failed to revoke permission", err)
	}
	if !removed {
		return nil, internal.ErrUserBindingMissing
	}

	s.logger.Info("permission revoked from user", "permission_id", row.ID, "user_id", dto.UserID, "actor_id", actor.ID)
	events.Publish(ctx, s.publisher, events.NewUserPermissionRevokedEvent(actor.ID, row.ID, row.Name, strconv.FormatInt(dto.UserID, 10)))

	return FromDataModel(row), nil
}

func (s *Service) find(ctx context.Context, id int64) (*permissionDatamodel.Permission, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load permission", "permission_id", id, "error", err)
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if row == nil {
		return nil, internal.ErrPermissionNotFound
	}
	return row, nil
}

func (s *Service) ensureUser(ctx context.Context, userID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		s.logger.Error("failed to look up user", "user_id", userID, "error", err)
		return internal.NewInternalError("failed to load user", err)
	}
	if !exists {
		return internal.ErrUserNotFound
	}
	return nil
}
