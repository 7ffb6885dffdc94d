package permission

import "time"

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;size:255;uniqueIndex;not null"`
	Description *string   `gorm:"column:description;size:255"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Permission) TableName() string {
	return "permissions"
}

type RolePermission struct {
	ID           int64     `gorm:"primaryKey"`
	PermissionID int64     `gorm:"column:permission_id;not null;uniqueIndex:permission_role_permission_id_role_unique"`
	Role         string    `gorm:"column:role;size:32;not null;uniqueIndex:permission_role_permission_id_role_unique;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RolePermission) TableName() string {
	return "permission_role"
}

type UserPermission struct {
	ID           int64     `gorm:"primaryKey"`
	PermissionID int64     `gorm:"column:permission_id;not null;uniqueIndex:permission_user_permission_id_user_id_unique"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex:permission_user_permission_id_user_id_unique;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserPermission) TableName() string {
	return "permission_user"
}
