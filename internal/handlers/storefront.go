package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ansaf01/fg-united/internal/services"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
)

// StorefrontHandler serves the public catalog pages.
type StorefrontHandler struct {
	products *services.ProductService
}

func NewStorefrontHandler(products *services.ProductService) *StorefrontHandler {
	return &StorefrontHandler{products: products}
}

// GET /api/home
func (h *StorefrontHandler) Home(c *gin.Context) {
	sections, err := h.products.Home(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sections)
}

// GET /api/shop
func (h *StorefrontHandler) Shop(c *gin.Context) {
	opts := services.ShopOptions{
		Query:      strings.TrimSpace(c.Query("q")),
		Categories: c.QueryArray("category"),
		Brands:     c.QueryArray("brand"),
		MinPrice:   parseFloatQuery(c, "min_price"),
		MaxPrice:   parseFloatQuery(c, "max_price"),
		Sort:       c.Query("sort"),
		Page:       parseIntQuery(c, "page", 1),
		Limit:      parseIntQuery(c, "limit", 12),
	}

	products, filters, pagination, err := h.products.Shop(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{
		"products": products,
		"filters":  filters,
	}, &response.Meta{
		Page:       pagination.Page,
		PerPage:    pagination.Limit,
		Total:      int(pagination.Total),
		TotalPages: pagination.TotalPages,
	})
}

// GET /api/shop/:id
func (h *StorefrontHandler) ProductDetail(c *gin.Context) {
	product, related, err := h.products.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		// Hidden, deleted, or unknown products bounce back to the listing.
		if errors.Is(err, apperrors.ErrNotFound) {
			response.Redirect(c, "/shop")
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"product": product,
		"related": related,
	})
}
