package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CacheEntry{},
	)
}

// AdminSeed describes the bootstrap admin account created on first start.
type AdminSeed struct {
	FullName string
	Email    string
	Password string
}

// SeedAdmin provisions the configured admin account when no user holds that
// email yet. An empty seed is a no-op so deployments can manage admins
// manually.
func SeedAdmin(db *gorm.DB, seed AdminSeed) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" {
		return nil
	}
	if strings.TrimSpace(seed.Password) == "" {
		return errors.New("seed admin: password is required")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("seed admin: lookup: %w", err)
	}

	hash, err := crypto.HashPassword(seed.Password)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}

	fullName := strings.TrimSpace(seed.FullName)
	if fullName == "" {
		fullName = "Store Admin"
	}

	admin := models.User{
		FullName: fullName,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: create: %w", err)
	}
	return nil
}
