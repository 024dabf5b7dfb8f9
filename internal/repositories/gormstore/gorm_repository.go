package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-content-service/internal/cache"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
)

// GormRepository implements the main Repository interface on top of one gorm handle.
// The dialect (postgres, mysql or sqlite) is chosen when the handle is opened.
type GormRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager
	invalidator  *cacheInvalidator

	// Repository instances
	material repositories.MaterialRepository
	category repositories.CategoryRepository
	user     repositories.UserRepository
	audit    repositories.AuditRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	CacheTTL    time.Duration
}

// NewGormRepository creates a new repository with all sub-repositories
func NewGormRepository(config RepositoryConfig) *GormRepository {
	repo := &GormRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient, config.CacheTTL),
	}
	repo.invalidator = newCacheInvalidator(repo.cacheManager, false)
	repo.bind(config.DB)

	return repo
}

func (r *GormRepository) bind(db *gorm.DB) {
	r.material = newMaterialGorm(db, r.cacheManager, r.invalidator)
	r.category = newCategoryGorm(db, r.cacheManager, r.invalidator)
	r.user = NewUserGorm(db)
	r.audit = NewAuditGorm(db)
}

// Material returns the material repository
func (r *GormRepository) Material() repositories.MaterialRepository {
	return r.material
}

// Category returns the category repository
func (r *GormRepository) Category() repositories.CategoryRepository {
	return r.category
}

// User returns the user repository
func (r *GormRepository) User() repositories.UserRepository {
	return r.user
}

// Audit returns the audit repository
func (r *GormRepository) Audit() repositories.AuditRepository {
	return r.audit
}

// Cache exposes the cache manager shared by the sub-repositories
func (r *GormRepository) Cache() *cache.CacheManager {
	return r.cacheManager
}

// WithTransaction executes a function within a database transaction.
// Cache invalidations issued by fn run after the outermost commit and are
// dropped on rollback.
func (r *GormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	invalidator, outermost := r.invalidator, !r.invalidator.deferred
	if outermost {
		invalidator = newCacheInvalidator(r.cacheManager, true)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &GormRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
			invalidator:  invalidator,
		}
		txRepo.bind(tx)

		return fn(txRepo)
	})
	if err != nil {
		return err
	}

	if outermost {
		invalidator.flush(context.WithoutCancel(ctx))
	}
	return nil
}

// Ping checks the health of database and cache connections
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.cacheManager.Enabled() {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *GormRepository) Close() error {
	var errs []error

	sqlDB, err := r.db.DB()
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   *GormRepository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) *RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize checks connectivity and builds the repositories
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return errors.New("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewGormRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return errors.New("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
