package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/clinic-api/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	user := models.User{Name: "A", Email: "a@x.com", PasswordHash: "$2a$10$hash", Role: models.RoleUser}

	id, err := storage.CreateUser(ctx, user)
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = storage.CreateUser(ctx, user)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := storage.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.Equal(t, models.RoleUser, got.Role)

	_, err = storage.GetUserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.UpdateUserPassword(ctx, id, "$2a$10$other"))
	got, err = storage.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$other", got.PasswordHash)

	assert.ErrorIs(t, storage.UpdateUserPassword(ctx, id+100, "x"), ErrNotFound)

	require.NoError(t, storage.UpdateUserRole(ctx, "a@x.com", models.RoleAdmin))
	got, err = storage.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	assert.Error(t, storage.UpdateUserRole(ctx, "a@x.com", "root"))
	assert.ErrorIs(t, storage.UpdateUserRole(ctx, "missing@x.com", models.RoleAdmin), ErrNotFound)
}
