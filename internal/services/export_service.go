package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

const exportSheet = "Materials"

var exportHeader = []interface{}{"ID", "Title", "Category", "Author", "Duration", "Created At", "Updated At"}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportMaterials(ctx context.Context, category string, w io.Writer) error {
	views, err := s.repo.Material().List(ctx, repositories.MaterialFilters{Category: category})
	if err != nil {
		return fmt.Errorf("failed to list materials: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := exportHeader
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, headerStyle)
	}

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(v)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write material %d: %w", v.ID, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "B", 48)
	_ = f.SetColWidth(exportSheet, "C", "D", 20)
	_ = f.SetColWidth(exportSheet, "F", "G", 22)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Materials exported", "category", category, "rows", len(views))
	return nil
}

func exportRow(v *models.MaterialView) []interface{} {
	return []interface{}{
		v.ID,
		v.Title,
		deref(v.CategoryName),
		deref(v.Author),
		deref(v.Duration),
		v.CreatedAt.UTC().Format(time.DateTime),
		v.UpdatedAt.UTC().Format(time.DateTime),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
