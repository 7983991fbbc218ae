// Package api assembles the HTTP surface: middleware stack, storefront
// routes, auth flows, and the admin console.
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/app"
	"github.com/ansaf01/fg-united/internal/auth"
	"github.com/ansaf01/fg-united/internal/handlers"
	"github.com/ansaf01/fg-united/internal/middleware"
	"github.com/ansaf01/fg-united/internal/services"
	"github.com/ansaf01/fg-united/internal/session"
	"github.com/ansaf01/fg-united/internal/storage"
	"github.com/ansaf01/fg-united/pkg/mail"
)

// Dependencies carries the externally constructed collaborators the router
// wires into handlers. Google may be nil when OAuth is disabled; RateStore
// may be nil to disable throttling.
type Dependencies struct {
	DB        *gorm.DB
	Config    *app.Config
	Sessions  *session.Manager
	Mailer    mail.Mailer
	Uploader  storage.Uploader
	Google    *auth.GoogleProvider
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager must be provided")
	}
	if deps.Mailer == nil {
		return nil, fmt.Errorf("mailer must be provided")
	}
	if deps.Uploader == nil {
		return nil, fmt.Errorf("uploader must be provided")
	}

	signupSvc, err := services.NewSignupService(deps.DB, deps.Sessions, deps.Mailer)
	if err != nil {
		return nil, err
	}
	resetSvc, err := services.NewPasswordResetService(deps.DB, deps.Sessions, deps.Mailer)
	if err != nil {
		return nil, err
	}
	authSvc, err := services.NewAuthService(deps.DB)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(deps.DB)
	if err != nil {
		return nil, err
	}
	categorySvc, err := services.NewCategoryService(deps.DB)
	if err != nil {
		return nil, err
	}
	productSvc, err := services.NewProductService(deps.DB)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(signupSvc, authSvc, deps.Sessions)
	resetHandler := handlers.NewPasswordResetHandler(resetSvc)
	oauthHandler := handlers.NewOAuthHandler(deps.Google, authSvc, deps.Sessions)
	storefront := handlers.NewStorefrontHandler(productSvc)
	adminHandler := handlers.NewAdminHandler(authSvc, userSvc, productSvc, deps.Sessions)
	categoryHandler := handlers.NewCategoryHandler(categorySvc)
	productHandler := handlers.NewProductAdminHandler(productSvc, deps.Uploader)

	cfg := deps.Config

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
	}
	r.Use(middleware.Session(deps.Sessions, middleware.SessionCookieOptions{
		Secure: cfg.Server.Cookie.Secure,
		Domain: cfg.Server.Cookie.Domain,
	}))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// Processed images are served straight off disk for the local backend.
	if local, ok := deps.Uploader.(*storage.LocalUploader); ok {
		base := cfg.Storage.Local.BaseURL
		if base == "" {
			base = "/uploads"
		}
		r.Static(base, local.Dir())
	}

	// Google sign-in is a browser navigation, not an API call.
	r.GET("/auth/google", oauthHandler.Start)
	r.GET("/auth/google/callback", oauthHandler.Callback)

	api := r.Group("/api")
	api.GET("/home", storefront.Home)
	api.GET("/shop", storefront.Shop)
	api.GET("/shop/:id", storefront.ProductDetail)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/otp", authHandler.VerifyOTP)
		authGroup.POST("/otp/resend", authHandler.ResendOTP)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/forgot-password", resetHandler.Forgot)
		authGroup.POST("/forgot-password/verify", resetHandler.VerifyCode)
		authGroup.POST("/reset-password", resetHandler.Reset)
	}

	requireUser := middleware.RequireUser(deps.Sessions, deps.DB)
	api.GET("/profile", requireUser, handlers.Profile)
	api.GET("/account/:page", requireUser, handlers.AccountPage)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	requireAdmin := middleware.RequireAdmin(deps.Sessions, deps.DB)
	protected := admin.Group("")
	protected.Use(requireAdmin)
	{
		protected.POST("/logout", adminHandler.Logout)
		protected.GET("/dashboard", adminHandler.Dashboard)

		protected.GET("/users", adminHandler.ListUsers)
		protected.PATCH("/users/:id/block", adminHandler.BlockUser)
		protected.PATCH("/users/:id/unblock", adminHandler.UnblockUser)

		protected.GET("/categories", categoryHandler.List)
		protected.POST("/categories", categoryHandler.Create)
		protected.PUT("/categories/:id", categoryHandler.Update)
		protected.DELETE("/categories/:id", categoryHandler.Delete)

		protected.GET("/products", productHandler.List)
		protected.POST("/products", productHandler.Create)
		protected.PUT("/products/:id", productHandler.Update)
		protected.DELETE("/products/:id", productHandler.Delete)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
