package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
)

// UserRepository interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Validation and checks
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
