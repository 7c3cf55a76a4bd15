package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/clinic-api/internal/migrations"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	t       *testing.T
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(t *testing.T, storage *Storage) *TestDataFactory {
	return &TestDataFactory{t: t, storage: storage}
}

func (f *TestDataFactory) Doctor(first, last, phone, email string) int64 {
	id, err := f.storage.CreateDoctor(context.Background(), models.Doctor{
		FirstName:   first,
		LastName:    last,
		PhoneNumber: phone,
		Email:       email,
	})
	require.NoError(f.t, err)
	return id
}

func (f *TestDataFactory) Favor(name string, doctorIDs ...int64) int64 {
	id, err := f.storage.CreateFavor(context.Background(), name, doctorIDs)
	require.NoError(f.t, err)
	return id
}

func (f *TestDataFactory) Clinic(name string, doctorIDs ...int64) int64 {
	id, err := f.storage.CreateClinic(context.Background(), name, doctorIDs)
	require.NoError(f.t, err)
	return id
}
