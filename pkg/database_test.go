package pkg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/learning-content-service/internal/config"
	"github.com/SAP-F-2025/learning-content-service/internal/models"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverMySQL, config.DriverSQLite} {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, Path: "x.db"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d, driver)
	}

	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenDatabase_SQLiteMigrate(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          "file:pkgtest?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}

	db, err := OpenDatabase(cfg, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 4, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, Migrate(context.Background(), db))
	for _, model := range models.AllModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient(&config.Config{RedisURL: "redis://localhost:6379/2"})
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()

	_, err = NewRedisClient(&config.Config{RedisURL: "://bad"})
	assert.Error(t, err)
}
