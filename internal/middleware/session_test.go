package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/session"
)

func newSessionManager(t *testing.T) *session.Manager {
	t.Helper()

	manager, err := session.NewManager(cache.NewMemoryStore())
	require.NoError(t, err)
	return manager
}

func TestSessionMintsCookieOnFirstContact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := newSessionManager(t)

	var seenID string
	router := gin.New()
	router.Use(Session(manager, SessionCookieOptions{}))
	router.GET("/", func(c *gin.Context) {
		seenID = SessionID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seenID)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, SessionCookieName, cookies[0].Name)
	require.Equal(t, seenID, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
}

func TestSessionReusesExistingCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := newSessionManager(t)

	var seenID string
	router := gin.New()
	router.Use(Session(manager, SessionCookieOptions{}))
	router.GET("/", func(c *gin.Context) {
		seenID = SessionID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "existing-id"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, "existing-id", seenID)
	require.Empty(t, w.Result().Cookies())
}
