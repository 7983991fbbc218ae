package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ansaf01/fg-united/internal/middleware"
	"github.com/ansaf01/fg-united/internal/services"
	"github.com/ansaf01/fg-united/internal/session"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
)

// AdminHandler serves the back-office console.
type AdminHandler struct {
	auth     *services.AuthService
	users    *services.UserService
	products *services.ProductService
	sessions *session.Manager
}

func NewAdminHandler(auth *services.AuthService, users *services.UserService, products *services.ProductService, sessions *session.Manager) *AdminHandler {
	return &AdminHandler{auth: auth, users: users, products: products, sessions: sessions}
}

// POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	admin, err := h.auth.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.sessions.SetPrincipal(c.Request.Context(), middleware.SessionID(c), session.Principal{
		UserID:   admin.ID,
		FullName: admin.FullName,
		Email:    admin.Email,
		Role:     admin.Role,
	}); err != nil {
		response.Error(c, apperrors.ErrDependencyFailure.WithInternal(err))
		return
	}
	response.Redirect(c, "/admin/dashboard")
}

// POST /api/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.Error(c, apperrors.ErrDependencyFailure.WithInternal(err))
		return
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	response.Redirect(c, "/admin/login")
}

// GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	customers, err := h.users.CountCustomers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	activeProducts, err := h.products.CountActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"customers":       customers,
		"active_products": activeProducts,
	})
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, pagination, err := h.users.List(c.Request.Context(), services.UserListOptions{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 10),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{"users": users}, &response.Meta{
		Page:       pagination.Page,
		PerPage:    pagination.Limit,
		Total:      int(pagination.Total),
		TotalPages: pagination.TotalPages,
	})
}

// PATCH /api/admin/users/:id/block
func (h *AdminHandler) BlockUser(c *gin.Context) {
	h.setBlocked(c, true)
}

// PATCH /api/admin/users/:id/unblock
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *AdminHandler) setBlocked(c *gin.Context, blocked bool) {
	user, err := h.users.SetBlocked(c.Request.Context(), c.Param("id"), blocked)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":         user.ID,
		"is_blocked": user.IsBlocked,
	})
}
