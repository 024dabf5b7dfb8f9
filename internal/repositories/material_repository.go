package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
)

// MaterialRepository covers the materials table and its enriched read model.
type MaterialRepository interface {
	// Write operations
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id uint) (bool, error)

	// Read operations
	GetByID(ctx context.Context, id uint) (*models.Material, error)
	GetViewByID(ctx context.Context, id uint) (*models.MaterialView, error)
	List(ctx context.Context, filters MaterialFilters) ([]*models.MaterialView, error)
	Search(ctx context.Context, pattern string) ([]*models.MaterialView, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	// Seed inserts categories whose name is not taken yet and returns how many were added.
	Seed(ctx context.Context, categories []models.Category) (int, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.MaterialAudit) error
	ListByMaterial(ctx context.Context, materialID uint) ([]*models.MaterialAudit, error)
}
