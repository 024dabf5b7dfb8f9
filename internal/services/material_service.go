package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-content-service/internal/events"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
	"github.com/SAP-F-2025/learning-content-service/internal/validator"
)

type materialService struct {
	repo             repositories.Repository
	logger           *slog.Logger
	validator        *validator.Validator
	publisher        events.EventPublisher
	renderer         *contentRenderer
	enforceOwnership bool
}

func NewMaterialService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, enforceOwnership bool) MaterialService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &materialService{
		repo:             repo,
		logger:           logger,
		validator:        validator,
		publisher:        publisher,
		renderer:         newContentRenderer(),
		enforceOwnership: enforceOwnership,
	}
}

// ===== READS =====

func (s *materialService) List(ctx context.Context, category string) ([]*models.MaterialView, error) {
	views, err := s.repo.Material().List(ctx, repositories.MaterialFilters{Category: category})
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return views, nil
}

// Search returns an empty result for a blank query without touching storage
func (s *materialService) Search(ctx context.Context, query string) ([]*models.MaterialView, error) {
	pattern, ok := repositories.ContainsPattern(query)
	if !ok {
		return []*models.MaterialView{}, nil
	}

	views, err := s.repo.Material().Search(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search materials: %w", err)
	}
	return views, nil
}

func (s *materialService) GetByID(ctx context.Context, id uint) (*models.MaterialDetail, error) {
	view, err := s.repo.Material().GetViewByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}

	html, err := s.renderer.Render(view.Content)
	if err != nil {
		// The raw content is still returned; only the rendered copy is lost.
		s.logger.Warn("Failed to render material content", "material_id", id, "error", err)
	}

	return &models.MaterialDetail{MaterialView: *view, ContentHTML: html}, nil
}

func (s *materialService) ListAudit(ctx context.Context, id uint) ([]*models.MaterialAudit, error) {
	entries, err := s.repo.Audit().ListByMaterial(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list material audit: %w", err)
	}
	return entries, nil
}

// ===== MUTATIONS =====

func (s *materialService) Create(ctx context.Context, req *MaterialRequest, actor Actor) (uint, error) {
	s.logger.Info("Creating material", "actor_id", actor.ID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return 0, err
	}

	material := &models.Material{CreatedBy: &actor.ID}
	applyRequest(material, req)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := requireCategory(ctx, tx, *req.CategoryID); err != nil {
			return err
		}

		if err := tx.Material().Create(ctx, material); err != nil {
			return fmt.Errorf("failed to create material: %w", err)
		}

		return writeAudit(ctx, tx, material, models.AuditCreated, actor.ID)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Material created successfully", "material_id", material.ID)
	s.publish(ctx, events.MaterialCreated, material, actor.ID)

	return material.ID, nil
}

func (s *materialService) Update(ctx context.Context, id uint, req *MaterialRequest, actor Actor) error {
	s.logger.Info("Updating material", "material_id", id, "actor_id", actor.ID)

	if err := s.validator.Validate(req); err != nil {
		return err
	}

	var material *models.Material
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		existing, err := tx.Material().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMaterialNotFound
			}
			return fmt.Errorf("failed to get material: %w", err)
		}

		if err := s.checkOwnership(existing, actor, "update"); err != nil {
			return err
		}

		if err := requireCategory(ctx, tx, *req.CategoryID); err != nil {
			return err
		}

		applyRequest(existing, req)
		if err := tx.Material().Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update material: %w", err)
		}

		material = existing
		return writeAudit(ctx, tx, existing, models.AuditUpdated, actor.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Material updated successfully", "material_id", id)
	s.publish(ctx, events.MaterialUpdated, material, actor.ID)

	return nil
}

func (s *materialService) Delete(ctx context.Context, id uint, actor Actor) error {
	s.logger.Info("Deleting material", "material_id", id, "actor_id", actor.ID)

	var deleted *models.Material
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		existing, err := tx.Material().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil
			}
			return fmt.Errorf("failed to get material: %w", err)
		}

		if err := s.checkOwnership(existing, actor, "delete"); err != nil {
			return err
		}

		removed, err := tx.Material().Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete material: %w", err)
		}
		if !removed {
			return nil
		}

		deleted = existing
		return writeAudit(ctx, tx, existing, models.AuditDeleted, actor.ID)
	})
	if err != nil {
		return err
	}

	if deleted == nil {
		s.logger.Info("Material already absent", "material_id", id)
		return nil
	}

	s.logger.Info("Material deleted successfully", "material_id", id)
	s.publish(ctx, events.MaterialDeleted, deleted, actor.ID)

	return nil
}

// ===== HELPERS =====

// checkOwnership allows the creator and admins. Materials whose creator was
// removed can only be changed by admins.
func (s *materialService) checkOwnership(material *models.Material, actor Actor, action string) error {
	if !s.enforceOwnership || actor.IsAdmin() {
		return nil
	}
	if material.CreatedBy != nil && *material.CreatedBy == actor.ID {
		return nil
	}
	return NewPermissionError(actor.ID, material.ID, "material", action, "not the creator")
}

// publish never fails the request; the write is already committed.
func (s *materialService) publish(ctx context.Context, eventType events.EventType, material *models.Material, actorID uint) {
	event := events.NewEvent(eventType, events.MaterialEventData{
		MaterialID: material.ID,
		Title:      material.Title,
		CategoryID: material.CategoryID,
		ActorID:    actorID,
	})

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish material event",
			"event_type", eventType,
			"material_id", material.ID,
			"error", err)
	}
}

func applyRequest(material *models.Material, req *MaterialRequest) {
	material.Title = req.Title
	material.Description = req.Description
	material.Content = req.Content
	material.CategoryID = req.CategoryID
	material.Duration = req.Duration
}

func requireCategory(ctx context.Context, repo repositories.Repository, categoryID uint) error {
	exists, err := repo.Category().ExistsByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: id %d", ErrCategoryNotFound, categoryID)
	}
	return nil
}

type auditSnapshot struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	CategoryID  *uint   `json:"category_id,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	CreatedBy   *uint   `json:"created_by,omitempty"`
}

func writeAudit(ctx context.Context, repo repositories.Repository, material *models.Material, action models.AuditAction, actorID uint) error {
	payload, err := json.Marshal(auditSnapshot{
		Title:       material.Title,
		Description: material.Description,
		CategoryID:  material.CategoryID,
		Duration:    material.Duration,
		CreatedBy:   material.CreatedBy,
	})
	if err != nil {
		return fmt.Errorf("failed to encode audit payload: %w", err)
	}

	entry := &models.MaterialAudit{
		MaterialID: material.ID,
		Action:     action,
		ActorID:    actorID,
		Payload:    datatypes.JSON(payload),
	}
	if err := repo.Audit().Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit: %w", err)
	}
	return nil
}
