// ABOUTME: Tests for admin user store operations.
// ABOUTME: Covers creation, lookup, counting, and duplicate usernames.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStore_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	admin := &AdminUser{
		ID:           "admin-1",
		Username:     "operator",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    now,
	}
	require.NoError(t, s.CreateAdminUser(ctx, admin))

	got, err := s.GetAdminUser(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "operator", got.Username)
	assert.Equal(t, "$2a$10$fakehash", got.PasswordHash)
	assert.Equal(t, now, got.CreatedAt)
}

func TestAdminStore_GetByUsername(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAdminUser(ctx, &AdminUser{
		ID: "admin-1", Username: "operator", PasswordHash: "h", CreatedAt: time.Now().UTC(),
	}))

	got, err := s.GetAdminUserByUsername(ctx, "operator")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", got.ID)

	_, err = s.GetAdminUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestAdminStore_Create_DuplicateUsername(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAdminUser(ctx, &AdminUser{
		ID: "admin-1", Username: "operator", PasswordHash: "h", CreatedAt: time.Now().UTC(),
	}))

	err := s.CreateAdminUser(ctx, &AdminUser{
		ID: "admin-2", Username: "operator", PasswordHash: "h", CreatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrAdminNameExists)
}

func TestAdminStore_Get_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetAdminUser(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestAdminStore_CountAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	count, err := s.CountAdminUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, s.CreateAdminUser(ctx, &AdminUser{
			ID: "admin-" + name, Username: name, PasswordHash: "h", CreatedAt: time.Now().UTC(),
		}))
	}

	count, err = s.CountAdminUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	admins, err := s.ListAdminUsers(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 3)
}
