package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
)

const (
	defaultUserPageSize = 10
	maxUserPageSize     = 100
)

// UserListOptions filter the admin user listing.
type UserListOptions struct {
	Search string
	Page   int
	Limit  int
}

// UserService covers the admin back-office view of accounts.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a user service.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// List returns non-admin accounts, newest first, optionally filtered by a
// case-insensitive search over full name, email, and mobile.
func (s *UserService) List(ctx context.Context, opts UserListOptions) ([]models.User, Pagination, error) {
	page := sanitizePage(opts.Page)
	limit := sanitizeLimit(opts.Limit, defaultUserPageSize, maxUserPageSize)

	query := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleUser)

	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR mobile LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("user service: list users: %w", err)
	}

	return users, buildPagination(page, limit, total), nil
}

// Get returns a single account by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.ErrNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// SetBlocked toggles the blocked flag on an account. Blocking takes effect on
// the next guarded request because the guard re-checks the flag.
func (s *UserService) SetBlocked(ctx context.Context, id string, blocked bool) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if user.IsBlocked == blocked {
		return user, nil
	}

	if err := s.db.WithContext(ctx).
		Model(user).
		Update("is_blocked", blocked).Error; err != nil {
		return nil, fmt.Errorf("user service: update blocked flag: %w", err)
	}
	user.IsBlocked = blocked
	return user, nil
}

// CountCustomers reports the number of non-admin accounts, for the dashboard.
func (s *UserService) CountCustomers(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleUser).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("user service: count customers: %w", err)
	}
	return total, nil
}
