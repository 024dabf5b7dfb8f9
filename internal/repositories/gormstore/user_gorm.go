package gormstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

type UserGorm struct {
	db *gorm.DB
}

func NewUserGorm(db *gorm.DB) repositories.UserRepository {
	return &UserGorm{db: db}
}

func (u *UserGorm) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (u *UserGorm) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, handleDBError(err, "get user")
	}
	return &user, nil
}

// GetByEmail matches case-insensitively; emails are stored lower-cased
func (u *UserGorm) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (u *UserGorm) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by username")
	}
	return &user, nil
}

func (u *UserGorm) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	if err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ? OR email = ?", username, strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user exists")
	}
	return count > 0, nil
}
