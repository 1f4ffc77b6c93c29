package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// setupTestDatabase создаёт файл базы во временном каталоге и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()

	storage, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB))
	return storage
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя
func (f *TestDataFactory) CreateUser(t *testing.T, username, password string) int64 {
	t.Helper()
	res, err := f.storage.DB.Exec(`INSERT INTO users (username, password) VALUES (?, ?)`, username, password)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CreateSubscription создает тестовую подписку
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID int64, serviceName, planName string,
	start, end time.Time) int64 {
	t.Helper()
	id, err := f.storage.CreateEntry(context.Background(), models.Subscription{
		UserID:      userID,
		ServiceName: serviceName,
		PlanName:    planName,
		StartDate:   start,
		EndDate:     end,
	})
	require.NoError(t, err)
	return id
}

func countSubscriptions(t *testing.T, storage *Storage) int {
	t.Helper()
	var count int
	require.NoError(t, storage.DB.QueryRow(`SELECT COUNT(*) FROM subscriptions`).Scan(&count))
	return count
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
