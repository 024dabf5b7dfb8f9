package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

type AuditGorm struct {
	db *gorm.DB
}

func NewAuditGorm(db *gorm.DB) repositories.AuditRepository {
	return &AuditGorm{db: db}
}

func (a *AuditGorm) Create(ctx context.Context, entry *models.MaterialAudit) error {
	if err := a.db.WithContext(ctx).Create(entry).Error; err != nil {
		return handleDBError(err, "create material audit")
	}
	return nil
}

// ListByMaterial returns the trail newest first
func (a *AuditGorm) ListByMaterial(ctx context.Context, materialID uint) ([]*models.MaterialAudit, error) {
	entries := make([]*models.MaterialAudit, 0)
	if err := a.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "list material audits")
	}
	return entries, nil
}
