package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/app"
	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/database"
	"github.com/ansaf01/fg-united/internal/session"
	"github.com/ansaf01/fg-united/internal/storage"
	"github.com/ansaf01/fg-united/pkg/mail"
)

func newRouterDeps(t *testing.T) Dependencies {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sessions, err := session.NewManager(cache.NewMemoryStore())
	require.NoError(t, err)

	mailer, err := mail.NewSMTPMailer(mail.SMTPSettings{Enabled: false})
	require.NoError(t, err)

	uploader, err := storage.NewLocalUploader(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Monitoring.Health.Enabled = true
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Storage.Local.BaseURL = "/uploads"

	return Dependencies{
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Mailer:   mailer,
		Uploader: uploader,
	}
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	deps := newRouterDeps(t)

	missing := deps
	missing.DB = nil
	_, err := NewRouter(missing)
	require.Error(t, err)

	missing = deps
	missing.Sessions = nil
	_, err = NewRouter(missing)
	require.Error(t, err)

	missing = deps
	missing.Mailer = nil
	_, err = NewRouter(missing)
	require.Error(t, err)
}

func TestRouterServesCoreEndpoints(t *testing.T) {
	router, err := NewRouter(newRouterDeps(t))
	require.NoError(t, err)

	for _, path := range []string{"/health", "/metrics", "/api/home", "/api/shop"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}

	// Guarded routes refuse anonymous requests.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown routes fall through to the JSON 404.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterOAuthDisabledRedirect(t *testing.T) {
	router, err := NewRouter(newRouterDeps(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login?error=oauth_disabled", w.Header().Get("Location"))
}
