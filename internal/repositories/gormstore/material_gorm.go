package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-content-service/internal/cache"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

type MaterialGorm struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	invalidator  *cacheInvalidator
}

func newMaterialGorm(db *gorm.DB, cacheManager *cache.CacheManager, invalidator *cacheInvalidator) *MaterialGorm {
	return &MaterialGorm{
		db:           db,
		cacheManager: cacheManager,
		invalidator:  invalidator,
	}
}

// ===== WRITE OPERATIONS =====

// Create inserts a material and invalidates cached listings
func (m *MaterialGorm) Create(ctx context.Context, material *models.Material) error {
	if err := m.db.WithContext(ctx).Create(material).Error; err != nil {
		return handleDBError(err, "create material")
	}

	m.invalidator.materialChanged(ctx, material.ID)
	return nil
}

// Update replaces every column of an existing material and refreshes updated_at
// Callers check existence first: MySQL reports zero affected rows for an
// unchanged row, so RowsAffected cannot signal a missing material.
func (m *MaterialGorm) Update(ctx context.Context, material *models.Material) error {
	material.UpdatedAt = m.db.NowFunc()
	if err := m.db.WithContext(ctx).
		Model(material).
		Select("title", "description", "content", "category_id", "duration", "updated_at").
		Updates(material).Error; err != nil {
		return handleDBError(err, "update material")
	}

	m.invalidator.materialChanged(ctx, material.ID)
	return nil
}

// Delete removes a material. The boolean is false when no row matched.
func (m *MaterialGorm) Delete(ctx context.Context, id uint) (bool, error) {
	result := m.db.WithContext(ctx).Delete(&models.Material{}, id)
	if result.Error != nil {
		return false, handleDBError(result.Error, "delete material")
	}

	if result.RowsAffected > 0 {
		m.invalidator.materialChanged(ctx, id)
	}
	return result.RowsAffected > 0, nil
}

// ===== READ OPERATIONS =====

// GetByID loads the raw material row, used for ownership checks before a write
func (m *MaterialGorm) GetByID(ctx context.Context, id uint) (*models.Material, error) {
	var material models.Material
	if err := m.db.WithContext(ctx).First(&material, id).Error; err != nil {
		return nil, handleDBError(err, "get material")
	}
	return &material, nil
}

// GetViewByID returns the enriched material, cached by id
func (m *MaterialGorm) GetViewByID(ctx context.Context, id uint) (*models.MaterialView, error) {
	var view models.MaterialView
	err := m.cacheManager.Material.CacheOrExecute(ctx, cache.MaterialIDKey(id), &view, m.cacheManager.TTL(), func() (interface{}, error) {
		var rows []*models.MaterialView
		if err := materialViewQuery(m.db.WithContext(ctx)).
			Where("m.id = ?", id).
			Limit(1).
			Scan(&rows).Error; err != nil {
			return nil, handleDBError(err, "get material view")
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("material %d: %w", id, gorm.ErrRecordNotFound)
		}
		return rows[0], nil
	})
	if err != nil {
		return nil, err
	}

	return &view, nil
}

// List returns materials newest first, optionally restricted to one category name
func (m *MaterialGorm) List(ctx context.Context, filters repositories.MaterialFilters) ([]*models.MaterialView, error) {
	var views []*models.MaterialView
	err := m.cacheManager.Material.CacheOrExecute(ctx, cache.MaterialListKey(filters.Category), &views, m.cacheManager.TTL(), func() (interface{}, error) {
		query := materialViewQuery(m.db.WithContext(ctx))
		if filters.HasCategory() {
			query = query.Where("c.name = ?", filters.Category)
		}

		rows := make([]*models.MaterialView, 0)
		if err := query.Clauses(newestFirst()).Scan(&rows).Error; err != nil {
			return nil, handleDBError(err, "list materials")
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return views, nil
}

// Search runs the ranked substring search. pattern must already be escaped and
// wrapped, see repositories.ContainsPattern.
func (m *MaterialGorm) Search(ctx context.Context, pattern string) ([]*models.MaterialView, error) {
	rows := make([]*models.MaterialView, 0)
	if err := materialViewQuery(m.db.WithContext(ctx)).
		Where(searchWhere(pattern)).
		Clauses(searchRank(pattern)).
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "search materials")
	}

	return rows, nil
}
