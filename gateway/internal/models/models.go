package models

import "time"

// Action is the verb half of a permission grant.
type Action string

const (
	ActionRead   Action = "READ"
	ActionWrite  Action = "WRITE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionWrite, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"   json:"id"`
	FirstName    string `gorm:"not null"                   json:"firstName"`
	LastName     string `gorm:"not null"                   json:"lastName"`
	Email        string `gorm:"uniqueIndex;not null"       json:"email"`
	PasswordHash string `gorm:"column:password;not null"   json:"-"`
	RoleID       uint   `gorm:"index;not null"             json:"roleId"`
	Role         *Role  `gorm:"foreignKey:RoleID"          json:"role,omitempty"`
}

type Role struct {
	ID     uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string           `gorm:"uniqueIndex;not null"     json:"name"`
	Grants []RolePermission `gorm:"foreignKey:RoleID"        json:"grants,omitempty"`
}

// Permission names a protected resource, e.g. "Document".
type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;not null"     json:"name"`
	Description string `json:"description"`
}

type RolePermission struct {
	ID           uint        `gorm:"primaryKey;autoIncrement"                       json:"id"`
	RoleID       uint        `gorm:"not null;uniqueIndex:idx_role_permission_access" json:"roleId"`
	PermissionID uint        `gorm:"not null;uniqueIndex:idx_role_permission_access" json:"permissionId"`
	AccessType   Action      `gorm:"type:varchar(16);not null;uniqueIndex:idx_role_permission_access" json:"accessType"`
	Permission   *Permission `gorm:"foreignKey:PermissionID"                        json:"permission,omitempty"`
}

func (RolePermission) TableName() string { return "role_permissions" }

type Document struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OriginalName string    `gorm:"not null"                 json:"originalName"`
	Name         string    `gorm:"uniqueIndex;not null"     json:"name"`
	MimeType     string    `gorm:"column:mime_type"         json:"mimeType"`
	Size         int64     `gorm:"not null;default:0"       json:"size"`
	UploadedAt   time.Time `gorm:"autoCreateTime"           json:"uploadedAt"`
}
