package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ansaf01/fg-united/internal/services"
	"github.com/ansaf01/fg-united/internal/storage"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
)

const (
	maxProductImages    = 10
	maxProductImageSize = 5 << 20
)

// ProductAdminHandler covers admin product management, including multipart
// image uploads.
type ProductAdminHandler struct {
	products *services.ProductService
	uploader storage.Uploader
}

func NewProductAdminHandler(products *services.ProductService, uploader storage.Uploader) *ProductAdminHandler {
	return &ProductAdminHandler{products: products, uploader: uploader}
}

// GET /api/admin/products
func (h *ProductAdminHandler) List(c *gin.Context) {
	products, pagination, err := h.products.AdminList(c.Request.Context(),
		parseIntQuery(c, "page", 1),
		parseIntQuery(c, "limit", 12),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{"products": products}, &response.Meta{
		Page:       pagination.Page,
		PerPage:    pagination.Limit,
		Total:      int(pagination.Total),
		TotalPages: pagination.TotalPages,
	})
}

// POST /api/admin/products
func (h *ProductAdminHandler) Create(c *gin.Context) {
	input, ok := h.bindProductForm(c)
	if !ok {
		return
	}

	product, err := h.products.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, product)
}

// PUT /api/admin/products/:id
func (h *ProductAdminHandler) Update(c *gin.Context) {
	input, ok := h.bindProductForm(c)
	if !ok {
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// DELETE /api/admin/products/:id
func (h *ProductAdminHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// bindProductForm reads the multipart product form: scalar fields plus up to
// ten image files, each processed and uploaded before the service is called.
func (h *ProductAdminHandler) bindProductForm(c *gin.Context) (services.ProductInput, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, apperrors.NewBadRequest("expected multipart form data"))
		return services.ProductInput{}, false
	}

	input := services.ProductInput{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		CategoryID:  formValue(form, "category_id"),
		Brand:       formValue(form, "brand"),
	}
	if price := formValue(form, "price"); price != "" {
		input.Price, _ = strconv.ParseFloat(price, 64)
	}
	if stock := formValue(form, "stock"); stock != "" {
		input.Stock, _ = strconv.Atoi(stock)
	}
	if status := formValue(form, "status"); status != "" {
		enabled := status == "true" || status == "1"
		input.Status = &enabled
	}

	files := form.File["images"]
	if len(files) > maxProductImages {
		response.Error(c, apperrors.NewValidation(map[string]string{
			"images": fmt.Sprintf("At most %d images are allowed", maxProductImages),
		}))
		return services.ProductInput{}, false
	}

	for _, file := range files {
		url, err := h.storeImage(c, file)
		if err != nil {
			response.Error(c, err)
			return services.ProductInput{}, false
		}
		input.Images = append(input.Images, url)
	}

	return input, true
}

func (h *ProductAdminHandler) storeImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxProductImageSize {
		return "", apperrors.NewValidation(map[string]string{
			"images": fmt.Sprintf("%s exceeds the 5MB image limit", file.Filename),
		})
	}
	if contentType := file.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.NewValidation(map[string]string{
			"images": fmt.Sprintf("%s is not an image", file.Filename),
		})
	}

	reader, err := file.Open()
	if err != nil {
		return "", apperrors.NewBadRequest("could not read uploaded file")
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxProductImageSize+1))
	if err != nil {
		return "", apperrors.NewBadRequest("could not read uploaded file")
	}

	processed, err := storage.ProcessImage(data)
	if err != nil {
		return "", apperrors.NewValidation(map[string]string{
			"images": fmt.Sprintf("%s could not be processed as an image", file.Filename),
		})
	}

	url, err := h.uploader.Upload(c.Request.Context(), uuid.NewString()+".jpg", processed)
	if err != nil {
		return "", apperrors.ErrDependencyFailure.WithInternal(err)
	}
	return url, nil
}

func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
