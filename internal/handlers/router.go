package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-content-service/internal/auth"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/services"
	"github.com/SAP-F-2025/learning-content-service/internal/utils"
)

// RouterConfig carries the HTTP-only settings
type RouterConfig struct {
	AllowedOrigins []string
	AuthRateRPS    float64
	AuthRateBurst  int
}

type HandlerManager struct {
	materialHandler *MaterialHandler
	categoryHandler *CategoryHandler
	authHandler     *AuthHandler
	healthHandler   *HealthHandler
	authMiddleware  *AuthMiddleware
	config          RouterConfig
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier auth.TokenVerifier,
	logger utils.Logger,
	config RouterConfig,
) *HandlerManager {
	return &HandlerManager{
		materialHandler: NewMaterialHandler(serviceManager.Material(), serviceManager.Export(), logger),
		categoryHandler: NewCategoryHandler(serviceManager.Category(), logger),
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		healthHandler:   NewHealthHandler(serviceManager, logger),
		authMiddleware:  NewAuthMiddleware(verifier),
		config:          config,
	}
}

// NewRouter builds a gin engine with the common middleware and every route
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	// Unknown JSON fields are rejected by ShouldBindJSON
	gin.EnableJsonDecoderDisallowUnknownFields()

	router := gin.New()
	SetupMiddleware(router, logger, hm.config.AllowedOrigins)
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthHandler.HealthCheck)

	authenticated := hm.authMiddleware.Authenticate()
	staffOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin)

	api := router.Group("/api")
	{
		materials := api.Group("/materials")
		{
			// Public reads
			materials.GET("", hm.materialHandler.ListMaterials)
			materials.GET("/search", hm.materialHandler.SearchMaterials)
			materials.GET("/:id", hm.materialHandler.GetMaterial)

			// Instructors and admins only
			materials.GET("/export", authenticated, staffOnly, hm.materialHandler.ExportMaterials)
			materials.GET("/:id/audit", authenticated, staffOnly, hm.materialHandler.GetMaterialAudit)

			// Any authenticated user; ownership is checked by the service
			materials.POST("", authenticated, hm.materialHandler.CreateMaterial)
			materials.PUT("/:id", authenticated, hm.materialHandler.UpdateMaterial)
			materials.DELETE("/:id", authenticated, hm.materialHandler.DeleteMaterial)
		}

		api.GET("/categories", hm.categoryHandler.ListCategories)

		authRoutes := api.Group("/auth")
		{
			limited := RateLimitMiddleware(hm.config.AuthRateRPS, hm.config.AuthRateBurst)
			authRoutes.POST("/register", limited, hm.authHandler.Register)
			authRoutes.POST("/login", limited, hm.authHandler.Login)
			authRoutes.GET("/me", authenticated, hm.authHandler.Me)
		}
	}
}
