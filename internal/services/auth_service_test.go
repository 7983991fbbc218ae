package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/pkg/crypto"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
)

func TestAuthLogin(t *testing.T) {
	db := openServicesTestDB(t)
	hash, err := crypto.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		FullName: "Asha Nair",
		Email:    "asha@example.com",
		Password: hash,
		Role:     models.RoleUser,
	}).Error)

	svc, err := NewAuthService(db)
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "Asha@Example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", user.Email)

	_, err = svc.Login(context.Background(), "asha@example.com", "wrongpass")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthLoginBlockedAccount(t *testing.T) {
	db := openServicesTestDB(t)
	hash, err := crypto.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		FullName:  "Blocked User",
		Email:     "blocked@example.com",
		Password:  hash,
		IsBlocked: true,
		Role:      models.RoleUser,
	}).Error)

	svc, err := NewAuthService(db)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "blocked@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrAccountBlocked)
}

func TestAuthLoginOAuthOnlyAccount(t *testing.T) {
	db := openServicesTestDB(t)
	require.NoError(t, db.Create(&models.User{
		FullName: "OAuth Only",
		Email:    "oauth@example.com",
		GoogleID: "google-sub-1",
		Role:     models.RoleUser,
	}).Error)

	svc, err := NewAuthService(db)
	require.NoError(t, err)

	// Password-less accounts fail as invalid credentials, not a special case.
	_, err = svc.Login(context.Background(), "oauth@example.com", "anything")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthAdminLoginRequiresAdminRole(t *testing.T) {
	db := openServicesTestDB(t)
	hash, err := crypto.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		FullName: "Plain User",
		Email:    "user@example.com",
		Password: hash,
		Role:     models.RoleUser,
	}).Error)
	require.NoError(t, db.Create(&models.User{
		FullName: "Store Admin",
		Email:    "admin@example.com",
		Password: hash,
		Role:     models.RoleAdmin,
	}).Error)

	svc, err := NewAuthService(db)
	require.NoError(t, err)

	_, err = svc.AdminLogin(context.Background(), "user@example.com", "secret123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	admin, err := svc.AdminLogin(context.Background(), "admin@example.com", "secret123")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin())
}

func TestLoginWithGoogleProvisionsUser(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewAuthService(db)
	require.NoError(t, err)

	user, err := svc.LoginWithGoogle(context.Background(), "google-sub-1", "New@Example.com", "New User")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", user.Email)
	require.Equal(t, "google-sub-1", user.GoogleID)
	require.Equal(t, models.RoleUser, user.Role)
	require.False(t, user.HasPassword())
}

func TestLoginWithGoogleLinksExistingAccount(t *testing.T) {
	db := openServicesTestDB(t)
	hash, err := crypto.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		FullName: "Asha Nair",
		Email:    "asha@example.com",
		Password: hash,
		Role:     models.RoleUser,
	}).Error)

	svc, err := NewAuthService(db)
	require.NoError(t, err)

	user, err := svc.LoginWithGoogle(context.Background(), "google-sub-2", "asha@example.com", "Asha Nair")
	require.NoError(t, err)
	require.Equal(t, "google-sub-2", user.GoogleID)

	// The password credential still works after linking.
	_, err = svc.Login(context.Background(), "asha@example.com", "secret123")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLoginWithGoogleBlockedAccount(t *testing.T) {
	db := openServicesTestDB(t)
	require.NoError(t, db.Create(&models.User{
		FullName:  "Blocked User",
		Email:     "blocked@example.com",
		GoogleID:  "google-sub-3",
		IsBlocked: true,
		Role:      models.RoleUser,
	}).Error)

	svc, err := NewAuthService(db)
	require.NoError(t, err)

	_, err = svc.LoginWithGoogle(context.Background(), "google-sub-3", "blocked@example.com", "Blocked User")
	require.ErrorIs(t, err, apperrors.ErrAccountBlocked)
}
