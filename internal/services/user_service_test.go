package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ansaf01/fg-united/internal/models"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
)

func TestUserListSearchAndPagination(t *testing.T) {
	db := openServicesTestDB(t)
	for i := 0; i < 15; i++ {
		require.NoError(t, db.Create(&models.User{
			FullName: fmt.Sprintf("Customer %02d", i),
			Email:    fmt.Sprintf("customer%02d@example.com", i),
			Mobile:   fmt.Sprintf("98765432%02d", i),
			Role:     models.RoleUser,
		}).Error)
	}
	require.NoError(t, db.Create(&models.User{
		FullName: "Store Admin",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
	}).Error)

	svc, err := NewUserService(db)
	require.NoError(t, err)

	users, pagination, err := svc.List(context.Background(), UserListOptions{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 10)
	require.EqualValues(t, 15, pagination.Total)
	require.Equal(t, 2, pagination.TotalPages)

	// Admin accounts never appear in the customer listing.
	for _, user := range users {
		require.Equal(t, models.RoleUser, user.Role)
	}

	users, _, err = svc.List(context.Background(), UserListOptions{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 5)

	users, pagination, err = svc.List(context.Background(), UserListOptions{Search: "customer07"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.EqualValues(t, 1, pagination.Total)
	require.Equal(t, "Customer 07", users[0].FullName)

	users, _, err = svc.List(context.Background(), UserListOptions{Search: "9876543203"})
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestUserSetBlocked(t *testing.T) {
	db := openServicesTestDB(t)
	seeded := models.User{
		FullName: "Asha Nair",
		Email:    "asha@example.com",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(&seeded).Error)

	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.SetBlocked(context.Background(), seeded.ID, true)
	require.NoError(t, err)
	require.True(t, user.IsBlocked)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", seeded.ID).Error)
	require.True(t, stored.IsBlocked)

	user, err = svc.SetBlocked(context.Background(), seeded.ID, false)
	require.NoError(t, err)
	require.False(t, user.IsBlocked)
}

func TestUserSetBlockedRejectsAdmins(t *testing.T) {
	db := openServicesTestDB(t)
	admin := models.User{
		FullName: "Store Admin",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, db.Create(&admin).Error)

	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.SetBlocked(context.Background(), admin.ID, true)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserSetBlockedUnknownID(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.SetBlocked(context.Background(), "missing-id", true)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
