package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/internal/session"
	appmail "github.com/ansaf01/fg-united/pkg/mail"
)

func openServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()

	manager, err := session.NewManager(cache.NewMemoryStore())
	require.NoError(t, err)
	return manager
}

// recordingMailer captures outbound messages and can be told to fail.
type recordingMailer struct {
	messages []appmail.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, message appmail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, message)
	return nil
}

func fixedCode(code string) func() (string, error) {
	return func() (string, error) { return code, nil }
}
