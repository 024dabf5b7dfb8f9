package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/learning-content-service/internal/events"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories"
	"github.com/SAP-F-2025/learning-content-service/internal/repositories/gormstore"
	"github.com/SAP-F-2025/learning-content-service/internal/validator"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	validator *validator.Validator
	logger    *slog.Logger

	owner    *models.User
	other    *models.User
	admin    *models.User
	cisco    uint
	mikrotik uint
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	repo := gormstore.NewGormRepository(gormstore.RepositoryConfig{DB: db})
	ctx := context.Background()

	_, err = repo.Category().Seed(ctx, models.DefaultCategories())
	require.NoError(t, err)

	env := &testEnv{
		db:        db,
		repo:      repo,
		publisher: events.NewMockEventPublisher(nil),
		validator: validator.New(),
		logger:    discardLogger(),
	}

	env.owner = env.user(t, "guru_andi", models.RoleInstructor)
	env.other = env.user(t, "guru_rina", models.RoleInstructor)
	env.admin = env.user(t, "admin", models.RoleAdmin)

	categories, err := repo.Category().List(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		switch c.Name {
		case "Cisco Networking":
			env.cisco = c.ID
		case "Mikrotik":
			env.mikrotik = c.ID
		}
	}

	return env
}

func (e *testEnv) user(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()

	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, e.repo.User().Create(context.Background(), u))
	return u
}

func (e *testEnv) materials(enforceOwnership bool) MaterialService {
	return NewMaterialService(e.repo, e.logger, e.validator, e.publisher, enforceOwnership)
}

func (e *testEnv) countMaterials(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(&models.Material{}).Count(&n).Error)
	return n
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// untouchedRepository fails the test on any storage access
type untouchedRepository struct {
	t *testing.T
}

func (r untouchedRepository) fail() {
	r.t.Helper()
	r.t.Fatal("storage must not be accessed")
}

func (r untouchedRepository) Material() repositories.MaterialRepository { r.fail(); return nil }
func (r untouchedRepository) Category() repositories.CategoryRepository { r.fail(); return nil }
func (r untouchedRepository) User() repositories.UserRepository         { r.fail(); return nil }
func (r untouchedRepository) Audit() repositories.AuditRepository       { r.fail(); return nil }
func (r untouchedRepository) WithTransaction(context.Context, func(repositories.Repository) error) error {
	r.fail()
	return nil
}
func (r untouchedRepository) Ping(context.Context) error { return nil }
func (r untouchedRepository) Close() error               { return nil }
