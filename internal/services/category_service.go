package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
)

// CategoryInput carries the admin category form fields.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      *bool  `json:"status"`
}

// CategoryService manages the catalog's category tree (flat, soft-deleted).
type CategoryService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCategoryService constructs a category service.
func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	if db == nil {
		return nil, errors.New("category service: db is required")
	}
	return &CategoryService{db: db, now: time.Now}, nil
}

// List returns non-deleted categories, newest first. When activeOnly is set,
// disabled categories are omitted.
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := s.db.WithContext(ctx).Where("is_deleted = ?", false)
	if activeOnly {
		query = query.Where("status = ?", true)
	}

	var categories []models.Category
	if err := query.Order("created_at DESC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("category service: list categories: %w", err)
	}
	return categories, nil
}

// Get returns a non-deleted category by id.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.ErrNotFound
	}

	var category models.Category
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("category service: find category: %w", err)
	}
	return &category, nil
}

// Create adds a category. Names must be unique case-insensitively among
// non-deleted categories; a deleted category's name may be reused.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" {
		return nil, apperrors.NewValidation(map[string]string{"name": "Category name is required"})
	}

	taken, err := s.nameTaken(ctx, input.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict(map[string]string{"name": "A category with this name already exists"})
	}

	category := models.Category{
		Name:        input.Name,
		Description: input.Description,
		Status:      true,
	}
	if input.Status != nil {
		category.Status = *input.Status
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("category service: create category: %w", err)
	}
	return &category, nil
}

// Update modifies a category's name, description, or status.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apperrors.NewValidation(map[string]string{"name": "Category name is required"})
	}

	taken, err := s.nameTaken(ctx, input.Name, category.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict(map[string]string{"name": "A category with this name already exists"})
	}

	updates := map[string]any{
		"name":        input.Name,
		"description": strings.TrimSpace(input.Description),
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("category service: update category: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a category. Products keep their reference but vanish
// from the storefront because listings join on non-deleted categories.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(category).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": now,
		"status":     false,
	}).Error; err != nil {
		return fmt.Errorf("category service: delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) nameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("LOWER(name) = ? AND is_deleted = ?", strings.ToLower(name), false)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("category service: check name: %w", err)
	}
	return count > 0, nil
}
