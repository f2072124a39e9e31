package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

const (
	RoleAdmin  uint = 1
	RoleEditor uint = 2
	RoleViewer uint = 3

	PermissionDocument  uint = 1
	PermissionIngestion uint = 2
	PermissionUser      uint = 3
)

// SuperAdminEmail is the account created by Seed.
const SuperAdminEmail = "superadmin@admin.com"

const superAdminHash = "$2a$10$iER0FCL2ZiHaIpnv59XrKu9OksAEu/gCNzq.4YrjPM2V3jPt3d6ue"

var seedRoles = []models.Role{
	{ID: RoleAdmin, Name: "Admin"},
	{ID: RoleEditor, Name: "Editor"},
	{ID: RoleViewer, Name: "Viewer"},
}

var seedPermissions = []models.Permission{
	{ID: PermissionDocument, Name: "Document", Description: "Resource to manage Documents"},
	{ID: PermissionIngestion, Name: "Ingestion", Description: "Able to Download a document"},
	{ID: PermissionUser, Name: "User", Description: "Resource to manage Users"},
}

var allActions = []models.Action{models.ActionRead, models.ActionWrite, models.ActionUpdate, models.ActionDelete}

func grants(role, permission uint, actions ...models.Action) []models.RolePermission {
	out := make([]models.RolePermission, 0, len(actions))
	for _, a := range actions {
		out = append(out, models.RolePermission{RoleID: role, PermissionID: permission, AccessType: a})
	}
	return out
}

func seedGrants() []models.RolePermission {
	var out []models.RolePermission
	out = append(out, grants(RoleAdmin, PermissionDocument, allActions...)...)
	out = append(out, grants(RoleAdmin, PermissionUser, allActions...)...)
	out = append(out, grants(RoleAdmin, PermissionIngestion, models.ActionRead, models.ActionWrite, models.ActionUpdate)...)
	out = append(out, grants(RoleEditor, PermissionDocument, allActions...)...)
	out = append(out, grants(RoleEditor, PermissionIngestion, models.ActionRead, models.ActionWrite)...)
	out = append(out, grants(RoleViewer, PermissionDocument, models.ActionRead)...)
	out = append(out, grants(RoleViewer, PermissionIngestion, models.ActionRead)...)
	return out
}

// Seed inserts the built-in roles, permissions, grant matrix and the super
// admin account. Rows that already exist are left untouched.
func (r *GormRepo) Seed(ctx context.Context) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip := clause.OnConflict{DoNothing: true}

		roles := append([]models.Role(nil), seedRoles...)
		if err := tx.Clauses(skip).Create(&roles).Error; err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
		perms := append([]models.Permission(nil), seedPermissions...)
		if err := tx.Clauses(skip).Create(&perms).Error; err != nil {
			return fmt.Errorf("seed permissions: %w", err)
		}
		g := seedGrants()
		if err := tx.Clauses(skip).Create(&g).Error; err != nil {
			return fmt.Errorf("seed grants: %w", err)
		}

		admin := models.User{
			FirstName:    "Super",
			LastName:     "Admin",
			Email:        SuperAdminEmail,
			PasswordHash: superAdminHash,
			RoleID:       RoleAdmin,
		}
		err := tx.Where(models.User{Email: SuperAdminEmail}).
			Omit("Role").
			FirstOrCreate(&admin).Error
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		return nil
	})
}
