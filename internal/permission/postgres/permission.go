package postgres

import (
	"context"
	"errors"
	"fmt"

	permissionDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Create(ctx context.Context, p *permissionDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PermissionRepository) GetAll(ctx context.Context) ([]*permissionDatamodel.Permission, error) {
	var permissions []*permissionDatamodel.Permission
	err := r.db.WithContext(ctx).Order("id ASC").Find(&permissions).Error
	return permissions, err
}

func (r *PermissionRepository) GetByID(ctx context.Context, id int64) (*permissionDatamodel.Permission, error) {
	var p permissionDatamodel.Permission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Delete clears both binding tables before the permission row so the outcome does not
// depend on the schema having ON DELETE CASCADE.
func (r *PermissionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&permissionDatamodel.RolePermission{}).Error; err != nil {
			return fmt.Errorf("delete role bindings: %w", err)
		}
		if err := tx.Where("permission_id = ?", id).Delete(&permissionDatamodel.UserPermission{}).Error; err != nil {
			return fmt.Errorf("delete user bindings: %w", err)
		}
		if err := tx.Delete(&permissionDatamodel.Permission{}, id).Error; err != nil {
			return fmt.Errorf("delete permission: %w", err)
		}
		return nil
	})
}

func (r *PermissionRepository) AssignToRole(ctx context.Context, permissionID int64, roleName string) error {
	return r.db.WithContext(ctx).Create(&permissionDatamodel.RolePermission{
		PermissionID: permissionID,
		Role:         roleName,
	}).Error
}

func (r *PermissionRepository) RevokeFromRole(ctx context.Context, permissionID int64, roleName string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("permission_id = ? AND role = ?", permissionID, roleName).
		Delete(&permissionDatamodel.RolePermission{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PermissionRepository) ListByRole(ctx context.Context, roleName string) ([]*permissionDatamodel.Permission, error) {
	var permissions []*permissionDatamodel.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN permission_role ON permission_role.permission_id = permissions.id").
		Where("permission_role.role = ?", roleName).
		Order("permissions.id ASC").
		Find(&permissions).Error
	return permissions, err
}

func (r *PermissionRepository) AssignToUser(ctx context.Context, permissionID, userID int64) error {
	return r.db.WithContext(ctx).Create(&permissionDatamodel.UserPermission{
		PermissionID: permissionID,
		UserID:       userID,
	}).Error
}

func (r *PermissionRepository) RevokeFromUser(ctx context.Context, permissionID, userID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("permission_id = ? AND user_id = ?", permissionID, userID).
		Delete(&permissionDatamodel.UserPermission{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PermissionRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}
