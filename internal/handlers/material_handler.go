package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/services"
	"github.com/SAP-F-2025/learning-content-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MaterialHandler struct {
	BaseHandler
	materialService services.MaterialService
	exportService   services.ExportService
}

func NewMaterialHandler(
	materialService services.MaterialService,
	exportService services.ExportService,
	logger utils.Logger,
) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler:     NewBaseHandler(logger),
		materialService: materialService,
		exportService:   exportService,
	}
}

// ListMaterials lists materials, optionally filtered by category name
// @Summary List materials
// @Tags materials
// @Produce json
// @Param category query string false "Category name or 'all'"
// @Success 200 {array} models.MaterialView
// @Failure 500 {object} ErrorResponse
// @Router /materials [get]
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	category := c.Query("category")

	h.LogRequest(c, "Listing materials", "category", category)

	materials, err := h.materialService.List(c.Request.Context(), category)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonNil(materials))
}

// SearchMaterials searches title, description, content and category name
// @Summary Search materials
// @Tags materials
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {array} models.MaterialView
// @Failure 500 {object} ErrorResponse
// @Router /materials/search [get]
func (h *MaterialHandler) SearchMaterials(c *gin.Context) {
	query := c.Query("q")

	h.LogRequest(c, "Searching materials", "query", query)

	materials, err := h.materialService.Search(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonNil(materials))
}

// GetMaterial retrieves a material with rendered content
// @Summary Get material
// @Tags materials
// @Produce json
// @Param id path uint true "Material ID"
// @Success 200 {object} models.MaterialDetail
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/{id} [get]
func (h *MaterialHandler) GetMaterial(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting material", "material_id", id)

	material, err := h.materialService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, material)
}

// CreateMaterial creates a material owned by the caller
// @Summary Create material
// @Tags materials
// @Accept json
// @Produce json
// @Param material body services.MaterialRequest true "Material data"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials [post]
func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	var req services.MaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := h.materialService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{
		Message: "Material created successfully",
		ID:      &id,
	})
}

// UpdateMaterial replaces the editable fields of a material
// @Summary Update material
// @Tags materials
// @Accept json
// @Produce json
// @Param id path uint true "Material ID"
// @Param material body services.MaterialRequest true "Material data"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/{id} [put]
func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.MaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.materialService.Update(c.Request.Context(), id, &req, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Material updated successfully"})
}

// DeleteMaterial deletes a material; deleting a missing material still succeeds
// @Summary Delete material
// @Tags materials
// @Produce json
// @Param id path uint true "Material ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/{id} [delete]
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Material deleted successfully"})
}

// GetMaterialAudit lists the audit trail of a material, newest first
// @Summary Material audit trail
// @Tags materials
// @Produce json
// @Param id path uint true "Material ID"
// @Success 200 {array} models.MaterialAudit
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/{id}/audit [get]
func (h *MaterialHandler) GetMaterialAudit(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	audits, err := h.materialService.ListAudit(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonNil(audits))
}

// ExportMaterials downloads the listing as an xlsx workbook
// @Summary Export materials
// @Tags materials
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param category query string false "Category name or 'all'"
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/export [get]
func (h *MaterialHandler) ExportMaterials(c *gin.Context) {
	category := c.Query("category")

	h.LogRequest(c, "Exporting materials", "category", category)

	// Buffered so a failed export can still answer with a JSON error
	var buf bytes.Buffer
	if err := h.exportService.ExportMaterials(c.Request.Context(), category, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("materials-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// nonNil keeps empty results serialized as [] instead of null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
