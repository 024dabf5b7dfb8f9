package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-content-service/internal/cache"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
)

type CategoryGorm struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	invalidator  *cacheInvalidator
}

func newCategoryGorm(db *gorm.DB, cacheManager *cache.CacheManager, invalidator *cacheInvalidator) *CategoryGorm {
	return &CategoryGorm{
		db:           db,
		cacheManager: cacheManager,
		invalidator:  invalidator,
	}
}

// List returns all categories ordered by id
func (c *CategoryGorm) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := c.cacheManager.Category.CacheOrExecute(ctx, cache.CategoryListKey, &categories, c.cacheManager.TTL(), func() (interface{}, error) {
		rows := make([]*models.Category, 0)
		if err := c.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
			return nil, handleDBError(err, "list categories")
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (c *CategoryGorm) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := c.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, handleDBError(err, "get category")
	}
	return &category, nil
}

func (c *CategoryGorm) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check category")
	}
	return count > 0, nil
}

func (c *CategoryGorm) Seed(ctx context.Context, categories []models.Category) (int, error) {
	added := 0
	for i := range categories {
		category := categories[i]

		var count int64
		if err := c.db.WithContext(ctx).
			Model(&models.Category{}).
			Where("name = ?", category.Name).
			Count(&count).Error; err != nil {
			return added, handleDBError(err, "check category "+category.Name)
		}
		if count > 0 {
			continue
		}

		if err := c.db.WithContext(ctx).Create(&category).Error; err != nil {
			return added, handleDBError(err, "seed category "+category.Name)
		}
		added++
	}

	if added > 0 {
		c.invalidator.categoriesChanged(ctx)
	}
	return added, nil
}
