package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ansaf01/fg-united/internal/middleware"
	"github.com/ansaf01/fg-united/internal/services"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
)

// PasswordResetHandler drives the forgot-password flow.
type PasswordResetHandler struct {
	reset *services.PasswordResetService
}

func NewPasswordResetHandler(reset *services.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{reset: reset}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/forgot-password
func (h *PasswordResetHandler) Forgot(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.reset.Begin(c.Request.Context(), middleware.SessionID(c), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	// Identical response whether or not the address is registered.
	response.Success(c, http.StatusOK, gin.H{
		"message": "If that email is registered, a reset code has been sent",
	})
}

type verifyResetRequest struct {
	OTP string `json:"otp" validate:"required"`
}

// POST /api/auth/forgot-password/verify
func (h *PasswordResetHandler) VerifyCode(c *gin.Context) {
	var req verifyResetRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.reset.VerifyCode(c.Request.Context(), middleware.SessionID(c), req.OTP); err != nil {
		if errors.Is(err, apperrors.ErrSessionMissing) {
			response.Redirect(c, "/forgot-password")
			return
		}
		response.Error(c, err)
		return
	}
	response.Redirect(c, "/reset-password")
}

type resetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// POST /api/auth/reset-password
func (h *PasswordResetHandler) Reset(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	err := h.reset.Commit(c.Request.Context(), middleware.SessionID(c), req.Password, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionMissing) {
			response.Redirect(c, "/forgot-password")
			return
		}
		response.Error(c, err)
		return
	}
	response.Redirect(c, "/login")
}
