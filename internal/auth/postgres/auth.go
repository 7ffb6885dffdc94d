package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/auth"
	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("id", "password").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &auth.Credentials{UserID: u.ID, PasswordHash: u.Password}, nil
}

func (r *Repository) GetActor(ctx context.Context, userID int64) (*internal.Actor, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Select("id", "email", "role").Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get actor: %w", err)
	}
	return &internal.Actor{ID: u.ID, Email: u.Email, Role: role.Role(u.Role)}, nil
}

const (
	directPermissionQuery = `
SELECT EXISTS(
  SELECT 1 FROM permission_user pu
  JOIN permissions p ON pu.permission_id = p.id
  WHERE pu.user_id = ? AND p.name = ?
)`

	rolePermissionQuery = `
SELECT EXISTS(
  SELECT 1 FROM permission_role pr
  JOIN permissions p ON pr.permission_id = p.id
  WHERE pr.role = ? AND p.name = ?
)`
)

// PermissionStore runs the authorization lookups as plain EXISTS probes over sqlx. It
// shares the connection pool gorm opened.
type PermissionStore struct {
	db *sqlx.DB
}

func NewPermissionStore(db *sqlx.DB) auth.PermissionStore {
	return &PermissionStore{db: db}
}

func (s *PermissionStore) HasDirectPermission(ctx context.Context, userID int64, permission string) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(directPermissionQuery), userID, permission); err != nil {
		return false, fmt.Errorf("direct permission query: %w", err)
	}
	return exists, nil
}

func (s *PermissionStore) HasRolePermission(ctx context.Context, roleName string, permission string) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(rolePermissionQuery), roleName, permission); err != nil {
		return false, fmt.Errorf("role permission query: %w", err)
	}
	return exists, nil
}
