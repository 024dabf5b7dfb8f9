package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

type categoryService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewCategoryService(repo repositories.Repository, logger *slog.Logger) CategoryService {
	return &categoryService{repo: repo, logger: logger}
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.Category().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Seed inserts the default categories that are missing
func (s *categoryService) Seed(ctx context.Context) (int, error) {
	added, err := s.repo.Category().Seed(ctx, models.DefaultCategories())
	if err != nil {
		return added, fmt.Errorf("failed to seed categories: %w", err)
	}

	s.logger.Info("Categories seeded", "added", added)
	return added, nil
}
