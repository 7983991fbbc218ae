package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/middleware"
	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/internal/services"
	"github.com/ansaf01/fg-united/internal/session"
	"github.com/ansaf01/fg-united/internal/storage"
	appmail "github.com/ansaf01/fg-united/pkg/mail"
)

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	sessions *session.Manager
	mailer   *recordedMailer
}

type recordedMailer struct {
	messages []appmail.Message
}

func (m *recordedMailer) Send(_ context.Context, message appmail.Message) error {
	m.messages = append(m.messages, message)
	return nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sessions, err := session.NewManager(cache.NewMemoryStore())
	require.NoError(t, err)

	mailer := &recordedMailer{}
	signupSvc, err := services.NewSignupService(db, sessions, mailer,
		services.WithSignupCodeGenerator(func() (string, error) { return "123456", nil }),
	)
	require.NoError(t, err)
	resetSvc, err := services.NewPasswordResetService(db, sessions, mailer,
		services.WithResetCodeGenerator(func() (string, error) { return "654321", nil }),
	)
	require.NoError(t, err)
	authSvc, err := services.NewAuthService(db)
	require.NoError(t, err)
	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)
	categorySvc, err := services.NewCategoryService(db)
	require.NoError(t, err)
	productSvc, err := services.NewProductService(db)
	require.NoError(t, err)
	uploader, err := storage.NewLocalUploader(t.TempDir(), "/uploads")
	require.NoError(t, err)

	authHandler := NewAuthHandler(signupSvc, authSvc, sessions)
	resetHandler := NewPasswordResetHandler(resetSvc)
	storefront := NewStorefrontHandler(productSvc)
	admin := NewAdminHandler(authSvc, userSvc, productSvc, sessions)
	categories := NewCategoryHandler(categorySvc)
	products := NewProductAdminHandler(productSvc, uploader)

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.Session(sessions, middleware.SessionCookieOptions{}))

	api := router.Group("/api")
	api.GET("/home", storefront.Home)
	api.GET("/shop", storefront.Shop)
	api.GET("/shop/:id", storefront.ProductDetail)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/otp", authHandler.VerifyOTP)
	authGroup.POST("/otp/resend", authHandler.ResendOTP)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/forgot-password", resetHandler.Forgot)
	authGroup.POST("/forgot-password/verify", resetHandler.VerifyCode)
	authGroup.POST("/reset-password", resetHandler.Reset)

	userGuard := middleware.RequireUser(sessions, db)
	api.GET("/profile", userGuard, Profile)
	api.GET("/account/:page", userGuard, AccountPage)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", admin.Login)
	adminGuard := middleware.RequireAdmin(sessions, db)
	adminGroup.POST("/logout", adminGuard, admin.Logout)
	adminGroup.GET("/dashboard", adminGuard, admin.Dashboard)
	adminGroup.GET("/users", adminGuard, admin.ListUsers)
	adminGroup.PATCH("/users/:id/block", adminGuard, admin.BlockUser)
	adminGroup.PATCH("/users/:id/unblock", adminGuard, admin.UnblockUser)
	adminGroup.GET("/categories", adminGuard, categories.List)
	adminGroup.POST("/categories", adminGuard, categories.Create)
	adminGroup.PUT("/categories/:id", adminGuard, categories.Update)
	adminGroup.DELETE("/categories/:id", adminGuard, categories.Delete)
	adminGroup.GET("/products", adminGuard, products.List)
	adminGroup.POST("/products", adminGuard, products.Create)
	adminGroup.PUT("/products/:id", adminGuard, products.Update)
	adminGroup.DELETE("/products/:id", adminGuard, products.Delete)

	return &testServer{router: router, db: db, sessions: sessions, mailer: mailer}
}

// do issues a request carrying the given session cookie and returns the
// decoded envelope.
func (s *testServer) do(t *testing.T, method, path, sessionID string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sessionID})
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var envelope map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func (s *testServer) loginAs(t *testing.T, user *models.User) string {
	t.Helper()

	sessionID := s.sessions.NewSessionID()
	require.NoError(t, s.sessions.SetPrincipal(context.Background(), sessionID, session.Principal{
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}))
	return sessionID
}

func redirectTarget(envelope map[string]any) string {
	data, _ := envelope["data"].(map[string]any)
	target, _ := data["redirect"].(string)
	return target
}

func errorCode(envelope map[string]any) string {
	errInfo, _ := envelope["error"].(map[string]any)
	code, _ := errInfo["code"].(string)
	return code
}

func pngUpload(t *testing.T, writer *multipart.Writer, field, filename string) {
	t.Helper()

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename),
	}
	header["Content-Type"] = []string{"image/png"}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	require.NoError(t, png.Encode(part, img))
}
