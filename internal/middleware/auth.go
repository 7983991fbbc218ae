package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/internal/session"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
)

// RequireUser guards routes for authenticated storefront users. The blocked
// flag is re-checked against the database on every request so an admin block
// takes effect immediately; a blocked user's session is destroyed.
func RequireUser(sessions *session.Manager, db *gorm.DB) gin.HandlerFunc {
	return requireRole(sessions, db, "")
}

// RequireAdmin guards the admin console.
func RequireAdmin(sessions *session.Manager, db *gorm.DB) gin.HandlerFunc {
	return requireRole(sessions, db, models.RoleAdmin)
}

func requireRole(sessions *session.Manager, db *gorm.DB, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := SessionID(c)
		principal, found, err := sessions.Principal(c.Request.Context(), sessionID)
		if err != nil {
			response.Error(c, apperrors.ErrDependencyFailure.WithInternal(err))
			c.Abort()
			return
		}
		if !found {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).
			Where("id = ?", principal.UserID).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				_ = sessions.Destroy(c.Request.Context(), sessionID)
				response.Error(c, apperrors.ErrUnauthorized)
			} else {
				response.Error(c, apperrors.ErrDependencyFailure.WithInternal(err))
			}
			c.Abort()
			return
		}

		if user.IsBlocked {
			_ = sessions.Destroy(c.Request.Context(), sessionID)
			response.Error(c, apperrors.ErrAccountBlocked)
			c.Abort()
			return
		}
		if role != "" && user.Role != role {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		setPrincipal(c, principal)
		c.Set("user", &user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by an auth guard.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
