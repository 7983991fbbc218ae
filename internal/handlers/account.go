package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ansaf01/fg-united/internal/middleware"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
)

var accountPages = map[string]bool{
	"cart":      true,
	"wishlist":  true,
	"orders":    true,
	"addresses": true,
	"settings":  true,
}

// Profile returns the authenticated user's account details.
// GET /api/profile
func Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"fullname": user.FullName,
		"email":    user.Email,
		"mobile":   user.Mobile,
	})
}

// AccountPage is a placeholder for account sections that are not built yet.
// GET /api/account/:page
func AccountPage(c *gin.Context) {
	page := c.Param("page")
	if !accountPages[page] {
		response.Error(c, apperrors.ErrNotFound)
		return
	}

	user, _ := middleware.CurrentUser(c)
	response.Success(c, http.StatusOK, gin.H{
		"page":    page,
		"user":    user.Email,
		"message": "Coming soon",
	})
}
