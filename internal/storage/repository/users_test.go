package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func TestStorage_RegisterUser(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	id, err := storage.RegisterUser(ctx, models.User{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := storage.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: 1, Username: "alice", Password: "secret"}, got)
}

func TestStorage_RegisterUser_Duplicate(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	_, err := storage.RegisterUser(ctx, models.User{Username: "alice", Password: "a"})
	require.NoError(t, err)

	_, err = storage.RegisterUser(ctx, models.User{Username: "alice", Password: "b"})
	require.ErrorIs(t, err, ErrConflict)

	users, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestStorage_GetUserByUsername_NotFound(t *testing.T) {
	storage := setupTestDatabase(t)

	_, err := storage.GetUserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ListUsers(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "alice", "a")
	factory.CreateUser(t, "bob", "b")

	users, err := storage.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestStorage_CanceledContext(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.RegisterUser(ctx, models.User{Username: "alice"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = storage.ListAllEntrys(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
