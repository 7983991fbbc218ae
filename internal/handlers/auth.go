package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ansaf01/fg-united/internal/middleware"
	"github.com/ansaf01/fg-united/internal/services"
	"github.com/ansaf01/fg-united/internal/session"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
)

// AuthHandler manages signup, OTP verification, login, and logout.
type AuthHandler struct {
	signup   *services.SignupService
	auth     *services.AuthService
	sessions *session.Manager
}

func NewAuthHandler(signup *services.SignupService, auth *services.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{signup: signup, auth: auth, sessions: sessions}
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid JSON payload"))
		return
	}

	if err := h.signup.Begin(c.Request.Context(), middleware.SessionID(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Redirect(c, "/verify-otp")
}

type otpRequest struct {
	OTP string `json:"otp" validate:"required"`
}

// POST /api/auth/otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	sessionID := middleware.SessionID(c)
	user, err := h.signup.Verify(c.Request.Context(), sessionID, req.OTP)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionMissing) {
			response.Redirect(c, "/signup")
			return
		}
		response.Error(c, err)
		return
	}

	// Auto-login the freshly created account.
	if err := h.sessions.SetPrincipal(c.Request.Context(), sessionID, session.Principal{
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}); err != nil {
		response.Error(c, apperrors.ErrDependencyFailure.WithInternal(err))
		return
	}
	response.Redirect(c, "/")
}

// POST /api/auth/otp/resend
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	if err := h.signup.Resend(c.Request.Context(), middleware.SessionID(c)); err != nil {
		if errors.Is(err, apperrors.ErrSessionMissing) {
			response.Redirect(c, "/signup")
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "A new code has been sent to your email"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.sessions.SetPrincipal(c.Request.Context(), middleware.SessionID(c), session.Principal{
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}); err != nil {
		response.Error(c, apperrors.ErrDependencyFailure.WithInternal(err))
		return
	}
	response.Redirect(c, "/")
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.Error(c, apperrors.ErrDependencyFailure.WithInternal(err))
		return
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	response.Redirect(c, "/login")
}
