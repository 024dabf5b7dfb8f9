package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/validator"
)

// Request DTOs live next to their validation rules
type (
	MaterialRequest = validator.MaterialRequest
	RegisterRequest = validator.RegisterRequest
	LoginRequest    = validator.LoginRequest
)

// Actor is the authenticated caller of a mutation
type Actor struct {
	ID   uint
	Role models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type MaterialService interface {
	// Reads
	List(ctx context.Context, category string) ([]*models.MaterialView, error)
	Search(ctx context.Context, query string) ([]*models.MaterialView, error)
	GetByID(ctx context.Context, id uint) (*models.MaterialDetail, error)
	ListAudit(ctx context.Context, id uint) ([]*models.MaterialAudit, error)

	// Mutations
	Create(ctx context.Context, req *MaterialRequest, actor Actor) (uint, error)
	Update(ctx context.Context, id uint, req *MaterialRequest, actor Actor) error
	// Delete succeeds without changes when the material does not exist
	Delete(ctx context.Context, id uint, actor Actor) error
}

type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Seed(ctx context.Context) (int, error)
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *LoginRequest) (string, *models.User, error)
	Me(ctx context.Context, userID uint) (*models.User, error)
}

type ExportService interface {
	// ExportMaterials writes the listing for category as an xlsx workbook
	ExportMaterials(ctx context.Context, category string, w io.Writer) error
}

// ServiceManager owns the lifecycle of every service
type ServiceManager interface {
	Material() MaterialService
	Category() CategoryService
	Auth() AuthService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
