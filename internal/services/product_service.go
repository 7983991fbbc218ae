package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
)

const (
	defaultShopPageSize = 12
	maxShopPageSize     = 48
	homeSectionSize     = 4
	relatedProductCount = 4
)

// ProductInput carries the admin product form fields. Images holds processed
// image URLs; uploads are handled before the service is called.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	CategoryID  string   `json:"category_id"`
	Brand       string   `json:"brand"`
	Images      []string `json:"images"`
	Status      *bool    `json:"status"`
}

// ShopOptions filter and order the storefront listing.
type ShopOptions struct {
	Query      string
	Categories []string
	Brands     []string
	MinPrice   float64
	MaxPrice   float64
	Sort       string
	Page       int
	Limit      int
}

// ShopFilters lists the selectable filter values for the current catalog.
type ShopFilters struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

// HomeSections groups the storefront landing page product strips.
type HomeSections struct {
	NewArrivals []models.Product `json:"new_arrivals"`
	Trending    []models.Product `json:"trending"`
	Explore     []models.Product `json:"explore"`
}

// ProductService serves the catalog to both the storefront and the admin
// console.
type ProductService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProductService constructs a product service.
func NewProductService(db *gorm.DB) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	return &ProductService{db: db, now: time.Now}, nil
}

// visible scopes a query to products shown on the storefront: active,
// non-deleted, and belonging to an active non-deleted category.
func (s *ProductService) visible(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.status = ? AND products.is_deleted = ?", true, false).
		Where("categories.status = ? AND categories.is_deleted = ?", true, false)
}

// Home returns the landing page sections.
func (s *ProductService) Home(ctx context.Context) (*HomeSections, error) {
	sections := &HomeSections{}

	if err := s.visible(ctx).
		Order("products.created_at DESC").
		Limit(homeSectionSize).
		Find(&sections.NewArrivals).Error; err != nil {
		return nil, fmt.Errorf("product service: new arrivals: %w", err)
	}

	if err := s.visible(ctx).
		Order("products.price DESC").
		Limit(homeSectionSize).
		Find(&sections.Trending).Error; err != nil {
		return nil, fmt.Errorf("product service: trending: %w", err)
	}

	if err := s.visible(ctx).
		Order(s.randomExpr()).
		Limit(homeSectionSize).
		Find(&sections.Explore).Error; err != nil {
		return nil, fmt.Errorf("product service: explore: %w", err)
	}

	return sections, nil
}

// Shop returns one page of the storefront listing plus the filter options for
// the whole visible catalog.
func (s *ProductService) Shop(ctx context.Context, opts ShopOptions) ([]models.Product, *ShopFilters, Pagination, error) {
	page := sanitizePage(opts.Page)
	limit := sanitizeLimit(opts.Limit, defaultShopPageSize, maxShopPageSize)

	query := s.visible(ctx)

	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.brand) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if names := normaliseValues(opts.Categories); len(names) > 0 {
		query = query.Where("LOWER(categories.name) IN ?", lowerAll(names))
	}
	if brands := normaliseValues(opts.Brands); len(brands) > 0 {
		query = query.Where("LOWER(products.brand) IN ?", lowerAll(brands))
	}
	if opts.MinPrice > 0 {
		query = query.Where("products.price >= ?", opts.MinPrice)
	}
	if opts.MaxPrice > 0 {
		query = query.Where("products.price <= ?", opts.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, Pagination{}, fmt.Errorf("product service: count products: %w", err)
	}

	var products []models.Product
	if err := query.
		Preload("Category").
		Order(shopOrderExpr(opts.Sort)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, nil, Pagination{}, fmt.Errorf("product service: list products: %w", err)
	}

	filters, err := s.filters(ctx)
	if err != nil {
		return nil, nil, Pagination{}, err
	}

	return products, filters, buildPagination(page, limit, total), nil
}

// Detail returns a visible product with its category and up to four related
// products from the same category. Hidden or missing products surface as
// not-found; the handler redirects to the shop listing.
func (s *ProductService) Detail(ctx context.Context, id string) (*models.Product, []models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, apperrors.ErrNotFound
	}

	var product models.Product
	if err := s.visible(ctx).
		Preload("Category").
		Where("products.id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("product service: find product: %w", err)
	}

	var related []models.Product
	if err := s.visible(ctx).
		Where("products.category_id = ? AND products.id <> ?", product.CategoryID, product.ID).
		Order("products.created_at DESC").
		Limit(relatedProductCount).
		Find(&related).Error; err != nil {
		return nil, nil, fmt.Errorf("product service: related products: %w", err)
	}

	return &product, related, nil
}

// AdminList returns non-deleted products for the back office, including
// disabled ones, newest first.
func (s *ProductService) AdminList(ctx context.Context, page, limit int) ([]models.Product, Pagination, error) {
	page = sanitizePage(page)
	limit = sanitizeLimit(limit, defaultShopPageSize, maxShopPageSize)

	query := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_deleted = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("product service: count products: %w", err)
	}

	var products []models.Product
	if err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("product service: list products: %w", err)
	}

	return products, buildPagination(page, limit, total), nil
}

// Get returns a non-deleted product by id regardless of status.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.ErrNotFound
	}

	var product models.Product
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("product service: find product: %w", err)
	}
	return &product, nil
}

// Create adds a product. At least one image is required.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if fields := s.validateInput(ctx, input, true); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	product := models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  strings.TrimSpace(input.CategoryID),
		Brand:       strings.TrimSpace(input.Brand),
		Images:      datatypes.NewJSONSlice(input.Images),
		Status:      true,
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("product service: create product: %w", err)
	}
	return &product, nil
}

// Update modifies a product. New images replace the stored set when provided;
// an empty Images slice keeps the existing ones.
func (s *ProductService) Update(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if fields := s.validateInput(ctx, input, false); len(fields) > 0 {
		return nil, apperrors.NewValidation(fields)
	}

	updates := map[string]any{
		"name":        strings.TrimSpace(input.Name),
		"description": strings.TrimSpace(input.Description),
		"price":       input.Price,
		"stock":       input.Stock,
		"category_id": strings.TrimSpace(input.CategoryID),
		"brand":       strings.TrimSpace(input.Brand),
	}
	if len(input.Images) > 0 {
		updates["images"] = datatypes.NewJSONSlice(input.Images)
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("product service: update product: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(product).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": now,
		"status":     false,
	}).Error; err != nil {
		return fmt.Errorf("product service: delete product: %w", err)
	}
	return nil
}

// CountActive reports the number of visible products, for the dashboard.
func (s *ProductService) CountActive(ctx context.Context) (int64, error) {
	var total int64
	if err := s.visible(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("product service: count active: %w", err)
	}
	return total, nil
}

func (s *ProductService) filters(ctx context.Context) (*ShopFilters, error) {
	filters := &ShopFilters{}

	if err := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("status = ? AND is_deleted = ?", true, false).
		Distinct().
		Order("name ASC").
		Pluck("name", &filters.Categories).Error; err != nil {
		return nil, fmt.Errorf("product service: category filters: %w", err)
	}

	if err := s.visible(ctx).
		Distinct().
		Order("products.brand ASC").
		Pluck("products.brand", &filters.Brands).Error; err != nil {
		return nil, fmt.Errorf("product service: brand filters: %w", err)
	}

	return filters, nil
}

func (s *ProductService) validateInput(ctx context.Context, input ProductInput, imagesRequired bool) map[string]string {
	fields := map[string]string{}

	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "Product name is required"
	}
	if strings.TrimSpace(input.Description) == "" {
		fields["description"] = "Description is required"
	}
	if input.Price < 0 {
		fields["price"] = "Price cannot be negative"
	}
	if input.Stock < 0 {
		fields["stock"] = "Stock cannot be negative"
	}
	if strings.TrimSpace(input.Brand) == "" {
		fields["brand"] = "Brand is required"
	}
	if imagesRequired && len(input.Images) == 0 {
		fields["images"] = "At least one product image is required"
	}

	categoryID := strings.TrimSpace(input.CategoryID)
	if categoryID == "" {
		fields["category_id"] = "Category is required"
	} else {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&models.Category{}).
			Where("id = ? AND is_deleted = ?", categoryID, false).
			Count(&count).Error; err == nil && count == 0 {
			fields["category_id"] = "Selected category does not exist"
		}
	}

	return fields
}

// randomExpr picks the vendor spelling of a random sort.
func (s *ProductService) randomExpr() string {
	if s.db.Dialector != nil && s.db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}

func shopOrderExpr(sort string) string {
	switch strings.TrimSpace(sort) {
	case "price_asc":
		return "products.price ASC, products.created_at DESC"
	case "price_desc":
		return "products.price DESC, products.created_at DESC"
	case "name_asc":
		return "products.name ASC"
	case "name_desc":
		return "products.name DESC"
	case "rating":
		return "products.rating DESC, products.review_count DESC"
	default:
		return "products.created_at DESC"
	}
}

func normaliseValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = strings.ToLower(value)
	}
	return out
}
