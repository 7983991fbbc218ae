package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/app"
	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/internal/storage"
	"github.com/ansaf01/fg-united/pkg/logger"
)

func TestConvertDatabaseConfig(t *testing.T) {
	cfg := &app.Config{}
	cfg.Database.Driver = "Postgres"
	cfg.Database.Postgres = app.DBAuthConfig{
		Host: "db.internal", Port: 5432, Database: "fgunited", Username: "fg", Password: "pw",
	}

	dbCfg := convertDatabaseConfig(cfg)
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, 5432, dbCfg.Port)
	require.Equal(t, "fgunited", dbCfg.Name)

	cfg = &app.Config{}
	dbCfg = convertDatabaseConfig(cfg)
	require.Equal(t, "sqlite", dbCfg.Driver)
}

func TestInitialiseCacheSelectsBackend(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}))

	log := logger.WithModule("test")

	cfg := &app.Config{}
	cfg.Cache.Backend = "memory"
	store, dbStore, memStore, err := initialiseCache(cfg, db, log)
	require.NoError(t, err)
	require.Nil(t, dbStore)
	require.NotNil(t, memStore)
	require.IsType(t, &cache.MemoryStore{}, store)

	cfg.Cache.Backend = "database"
	store, dbStore, memStore, err = initialiseCache(cfg, db, log)
	require.NoError(t, err)
	require.NotNil(t, dbStore)
	require.Nil(t, memStore)
	require.IsType(t, &cache.DatabaseStore{}, store)
}

func TestInitialiseUploaderDefaultsToLocal(t *testing.T) {
	cfg := &app.Config{}
	cfg.Storage.Local.Dir = filepath.Join(t.TempDir(), "uploads")
	cfg.Storage.Local.BaseURL = "/uploads"

	uploader, err := initialiseUploader(cfg)
	require.NoError(t, err)
	require.IsType(t, &storage.LocalUploader{}, uploader)
}

func TestBuildRouterDisabledRateLimit(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &app.Config{}
	uploader, err := storage.NewLocalUploader(t.TempDir(), "/uploads")
	require.NoError(t, err)

	deps, err := buildRouter(cfg, db, cache.NewMemoryStore(), uploader, nil)
	require.NoError(t, err)
	require.Nil(t, deps.RateStore)
	require.NotNil(t, deps.Sessions)
	require.NotNil(t, deps.Mailer)
}
