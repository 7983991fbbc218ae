package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ansaf01/fg-united/internal/services"
	"github.com/ansaf01/fg-united/pkg/response"
)

// CategoryHandler covers admin category management.
type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// GET /api/admin/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"categories": categories})
}

// POST /api/admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req services.CategoryInput
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

// PUT /api/admin/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	var req services.CategoryInput
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// DELETE /api/admin/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
