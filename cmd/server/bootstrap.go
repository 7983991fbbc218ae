package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/api"
	"github.com/ansaf01/fg-united/internal/app"
	"github.com/ansaf01/fg-united/internal/auth"
	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/database"
	"github.com/ansaf01/fg-united/internal/middleware"
	"github.com/ansaf01/fg-united/internal/session"
	"github.com/ansaf01/fg-united/internal/storage"
	"github.com/ansaf01/fg-united/pkg/logger"
	"github.com/ansaf01/fg-united/pkg/mail"
)

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	db, err := database.Open(convertDatabaseConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if err := database.SeedAdmin(db, database.AdminSeed{
		FullName: cfg.Auth.Admin.FullName,
		Email:    cfg.Auth.Admin.Email,
		Password: cfg.Auth.Admin.Password,
	}); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	logger.WithModule("database").Info("database connected",
		zap.String("driver", strings.ToLower(strings.TrimSpace(cfg.Database.Driver))))
	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

// initialiseCache returns the configured session store. The second return is
// the database-backed store when it needs periodic sweeping, the third the
// memory store for the same reason.
func initialiseCache(cfg *app.Config, db *gorm.DB, log *zap.Logger) (cache.Store, *cache.DatabaseStore, *cache.MemoryStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Backend)) {
	case "redis":
		store, err := cache.NewRedisStore(cfg.Cache.RedisStoreConfig())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		return store, nil, nil, nil
	case "memory":
		store := cache.NewMemoryStore()
		return store, nil, store, nil
	default:
		store := cache.NewDatabaseStore(db)
		return store, store, nil, nil
	}
}

func initialiseUploader(cfg *app.Config) (storage.Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "cloudinary":
		cl := cfg.Storage.Cloudinary
		return storage.NewCloudinaryUploader(cl.CloudName, cl.APIKey, cl.APISecret, cl.Folder)
	default:
		return storage.NewLocalUploader(cfg.Storage.Local.Dir, cfg.Storage.Local.BaseURL)
	}
}

func initialiseGoogle(ctx context.Context, cfg *app.Config, log *zap.Logger) (*auth.GoogleProvider, error) {
	if !cfg.Auth.Google.Enabled {
		return nil, nil
	}

	provider, err := auth.NewGoogleProvider(ctx, auth.GoogleConfig{
		ClientID:     cfg.Auth.Google.ClientID,
		ClientSecret: cfg.Auth.Google.ClientSecret,
		RedirectURL:  cfg.Auth.Google.RedirectURL,
	})
	if err != nil {
		return nil, fmt.Errorf("google sign-in: %w", err)
	}
	log.Info("google sign-in enabled")
	return provider, nil
}

func buildRouter(cfg *app.Config, db *gorm.DB, store cache.Store, uploader storage.Uploader, google *auth.GoogleProvider) (*api.Dependencies, error) {
	sessions, err := session.NewManager(store)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("smtp mailer: %w", err)
	}

	var rateStore middleware.RateStore
	if cfg.Server.RateLimit.Enabled {
		if store != nil {
			rateStore = middleware.NewStoreRateStore(store)
		} else {
			rateStore = middleware.NewMemoryRateStore()
		}
	}

	return &api.Dependencies{
		DB:        db,
		Config:    cfg,
		Sessions:  sessions,
		Mailer:    mailer,
		Uploader:  uploader,
		Google:    google,
		RateStore: rateStore,
	}, nil
}
