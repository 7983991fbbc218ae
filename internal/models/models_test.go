package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Category{}, &Product{}, &CacheEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestUserGetsUUIDOnCreate(t *testing.T) {
	db := openModelTestDB(t)

	user := User{FullName: "Asha Nair", Email: "asha@example.com", Role: RoleUser}
	require.NoError(t, db.Create(&user).Error)
	require.NotEmpty(t, user.ID)
}

func TestUserEmailUnique(t *testing.T) {
	db := openModelTestDB(t)

	require.NoError(t, db.Create(&User{FullName: "Asha Nair", Email: "dup@example.com"}).Error)
	err := db.Create(&User{FullName: "Arun Nair", Email: "dup@example.com"}).Error
	require.Error(t, err)
}

func TestUserHelpers(t *testing.T) {
	admin := User{Role: RoleAdmin, Password: "$2a$10$hash"}
	require.True(t, admin.IsAdmin())
	require.True(t, admin.HasPassword())

	oauthOnly := User{Role: RoleUser, GoogleID: "google-123"}
	require.False(t, oauthOnly.IsAdmin())
	require.False(t, oauthOnly.HasPassword())
}

func TestProductImagesRoundTrip(t *testing.T) {
	db := openModelTestDB(t)

	category := Category{Name: "Watches"}
	require.NoError(t, db.Create(&category).Error)

	product := Product{
		Name:        "Chrono X",
		Description: "Steel chronograph",
		Price:       149.99,
		Stock:       3,
		CategoryID:  category.ID,
		Brand:       "FG",
		Images:      []string{"/images/products/a.jpg", "/images/products/b.jpg"},
		Status:      true,
	}
	require.NoError(t, db.Create(&product).Error)

	var loaded Product
	require.NoError(t, db.Preload("Category").First(&loaded, "id = ?", product.ID).Error)
	require.Equal(t, []string{"/images/products/a.jpg", "/images/products/b.jpg"}, []string(loaded.Images))
	require.Equal(t, "/images/products/a.jpg", loaded.ImageURL())
	require.True(t, loaded.Visible())
	require.Equal(t, "Watches", loaded.Category.Name)
}

func TestProductImageURLPlaceholder(t *testing.T) {
	product := Product{}
	require.Equal(t, PlaceholderImage, product.ImageURL())
}
