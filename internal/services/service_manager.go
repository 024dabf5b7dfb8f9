package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/learning-content-service/internal/auth"
	"github.com/SAP-F-2025/learning-content-service/internal/events"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
	"github.com/SAP-F-2025/learning-content-service/internal/validator"
)

// ServiceManagerConfig holds the collaborators and policy switches of the services
type ServiceManagerConfig struct {
	// EnforceOwnership restricts update and delete to the creator and admins
	EnforceOwnership bool

	Publisher events.EventPublisher
	// TokenIssuer is nil when an external identity provider issues tokens
	TokenIssuer auth.TokenIssuer
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	materialService MaterialService
	categoryService CategoryService
	authService     AuthService
	exportService   ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.Publisher == nil {
		config.Publisher = events.NoopPublisher{}
	}

	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.repo == nil {
		return errors.New("repository is required")
	}

	sm.logger.Info("Initializing service manager")

	sm.materialService = NewMaterialService(sm.repo, sm.logger, sm.validator, sm.config.Publisher, sm.config.EnforceOwnership)
	sm.categoryService = NewCategoryService(sm.repo, sm.logger)
	sm.authService = NewAuthService(sm.repo, sm.logger, sm.validator, sm.config.TokenIssuer)
	sm.exportService = NewExportService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully",
		"enforce_ownership", sm.config.EnforceOwnership,
		"local_auth", sm.config.TokenIssuer != nil)

	return nil
}

// Service getters
func (sm *serviceManager) Material() MaterialService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.materialService
}

func (sm *serviceManager) Category() CategoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.categoryService
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return errors.New("service manager not initialized")
	}
	if sm.shutdown {
		return errors.New("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown closes the event publisher. Storage is owned by the repository manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.config.Publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
