package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ansaf01/fg-united/internal/session"
)

const (
	// SessionCookieName carries the opaque session identifier.
	SessionCookieName = "fg_session"

	sessionIDKey = "session_id"
	principalKey = "principal"

	sessionCookieMaxAge = 7 * 24 * 60 * 60
)

// SessionCookieOptions control the issued cookie's attributes.
type SessionCookieOptions struct {
	Secure bool
	Domain string
}

// Session ensures every request carries a session identifier, minting one and
// setting the cookie on first contact. State is only written to the backing
// store when a flow or login actually stores something.
func Session(manager *session.Manager, opts SessionCookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookieName)
		if err != nil || id == "" {
			id = manager.NewSessionID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, id, sessionCookieMaxAge, "/", opts.Domain, opts.Secure, true)
		}
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionID returns the request's session identifier.
func SessionID(c *gin.Context) string {
	id, _ := c.Get(sessionIDKey)
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}

// Principal returns the authenticated principal stored by an auth guard.
func Principal(c *gin.Context) (*session.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*session.Principal)
	return principal, ok && principal != nil
}

func setPrincipal(c *gin.Context, principal *session.Principal) {
	c.Set(principalKey, principal)
}
