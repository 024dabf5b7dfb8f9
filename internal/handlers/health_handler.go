package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-content-service/internal/services"
	"github.com/SAP-F-2025/learning-content-service/internal/utils"
)

const serviceName = "learning-content-service"

type HealthHandler struct {
	BaseHandler
	serviceManager services.ServiceManager
}

func NewHealthHandler(serviceManager services.ServiceManager, logger utils.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler:    NewBaseHandler(logger),
		serviceManager: serviceManager,
	}
}

// HealthCheck reports database and cache reachability
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	timestamp := time.Now().UTC().Format(time.RFC3339)

	if err := h.serviceManager.HealthCheck(ctx); err != nil {
		h.LogError(c, err, "Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": timestamp,
			"service":   serviceName,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": timestamp,
		"service":   serviceName,
	})
}
