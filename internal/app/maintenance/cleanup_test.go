package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/models"
)

func openSweepTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}, &models.Category{}, &models.Product{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestRunOncePurgesExpiredCacheRows(t *testing.T) {
	db := openSweepTestDB(t)
	store := cache.NewDatabaseStore(db)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stale", []byte("x"), time.Nanosecond))
	require.NoError(t, store.Set(ctx, "fresh", []byte("y"), time.Hour))
	time.Sleep(5 * time.Millisecond)

	sweeper := NewSweeper(nil, store, nil)
	require.NoError(t, sweeper.RunOnce(ctx))

	var count int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRunOncePrunesOldSoftDeletes(t *testing.T) {
	db := openSweepTestDB(t)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	old := now.AddDate(0, 0, -120)
	recent := now.AddDate(0, 0, -10)

	category := models.Category{Name: "Old", IsDeleted: true, DeletedAt: &old}
	require.NoError(t, db.Create(&category).Error)

	stale := models.Product{Name: "Stale", Description: "d", Brand: "b", CategoryID: category.ID, IsDeleted: true, DeletedAt: &old}
	kept := models.Product{Name: "Kept", Description: "d", Brand: "b", CategoryID: category.ID, IsDeleted: true, DeletedAt: &recent}
	live := models.Product{Name: "Live", Description: "d", Brand: "b", CategoryID: category.ID, Status: true}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&kept).Error)
	require.NoError(t, db.Create(&live).Error)

	sweeper := NewSweeper(db, nil, nil, WithNow(func() time.Time { return now }))
	require.NoError(t, sweeper.RunOnce(context.Background()))

	var productCount, categoryCount int64
	require.NoError(t, db.Model(&models.Product{}).Count(&productCount).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categoryCount).Error)
	require.EqualValues(t, 2, productCount)
	require.EqualValues(t, 0, categoryCount)
}

func TestStartWithoutBackendsIsNoop(t *testing.T) {
	sweeper := NewSweeper(nil, nil, nil)
	require.NoError(t, sweeper.Start())
	<-sweeper.Stop().Done()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	db := openSweepTestDB(t)
	sweeper := NewSweeper(nil, cache.NewDatabaseStore(db), nil, WithSweepSchedule("not-a-spec"))
	require.Error(t, sweeper.Start())
}
