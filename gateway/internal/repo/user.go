package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/doc_platform/gateway/internal/models"
)

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateUser stores u with a lowercased email. A unique index collision
// yields ErrAlreadyExists.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	return translate(r.DB.WithContext(ctx).Omit("Role").Create(u).Error)
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).
		Preload("Role").
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) FindRole(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// LoadUserWithGrants reads the user together with its role, the role's
// grants and their permissions. Preloading costs a fixed number of
// statements regardless of how many grants exist. Role is nil when the
// user's role row is missing.
func (r *GormRepo) LoadUserWithGrants(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Preload("Role.Grants.Permission").
		First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
