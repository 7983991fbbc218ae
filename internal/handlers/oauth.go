package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ansaf01/fg-united/internal/auth"
	"github.com/ansaf01/fg-united/internal/middleware"
	"github.com/ansaf01/fg-united/internal/services"
	"github.com/ansaf01/fg-united/internal/session"
	"github.com/ansaf01/fg-united/pkg/crypto"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/logger"
)

// OAuthHandler runs the Google sign-in redirect flow. These endpoints are
// browser navigations, so failures redirect to the login page instead of
// rendering JSON errors.
type OAuthHandler struct {
	google   *auth.GoogleProvider
	auth     *services.AuthService
	sessions *session.Manager
}

func NewOAuthHandler(google *auth.GoogleProvider, authService *services.AuthService, sessions *session.Manager) *OAuthHandler {
	return &OAuthHandler{google: google, auth: authService, sessions: sessions}
}

// GET /auth/google
func (h *OAuthHandler) Start(c *gin.Context) {
	if h.google == nil {
		c.Redirect(http.StatusFound, "/login?error=oauth_disabled")
		return
	}

	state, err := crypto.GenerateToken(24)
	if err != nil {
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}
	nonce, err := crypto.GenerateToken(24)
	if err != nil {
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}

	if err := h.sessions.SetOAuthState(c.Request.Context(), middleware.SessionID(c), session.OAuthState{
		State: state,
		Nonce: nonce,
	}); err != nil {
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}

	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state, nonce))
}

// GET /auth/google/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	if h.google == nil {
		c.Redirect(http.StatusFound, "/login?error=oauth_disabled")
		return
	}

	sessionID := middleware.SessionID(c)
	stored, found, err := h.sessions.OAuthState(c.Request.Context(), sessionID)
	if err != nil || !found {
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}
	_ = h.sessions.ClearOAuthState(c.Request.Context(), sessionID)

	if c.Query("error") != "" || c.Query("state") != stored.State {
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}

	identity, err := h.google.Exchange(c.Request.Context(), c.Query("code"), stored.Nonce)
	if err != nil {
		logger.WithModule("oauth").Warn("google exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}

	user, err := h.auth.LoginWithGoogle(c.Request.Context(), identity.Subject, identity.Email, identity.Name)
	if err != nil {
		if appErr := apperrors.FromError(err); appErr.Code == apperrors.ErrAccountBlocked.Code {
			c.Redirect(http.StatusFound, "/login?error=blocked")
			return
		}
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}

	if err := h.sessions.SetPrincipal(c.Request.Context(), sessionID, session.Principal{
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}); err != nil {
		c.Redirect(http.StatusFound, "/login?error=oauth_failed")
		return
	}

	c.Redirect(http.StatusFound, "/")
}
