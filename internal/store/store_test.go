// ABOUTME: Shared test helpers and cascade-delete tests for the store.
// ABOUTME: Uses a temporary SQLite database per test.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// seedUser inserts a user and returns it.
func seedUser(t *testing.T, s *SQLiteStore, id, username string) *User {
	t.Helper()
	u := &User{
		ID:        id,
		Username:  username,
		FullName:  "Test User",
		Email:     username + "@example.com",
		Active:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// seedHome inserts a home owned by userID and returns it.
func seedHome(t *testing.T, s *SQLiteStore, id, userID string) *Home {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	h := &Home{
		ID:            id,
		UserID:        userID,
		Name:          "Test Home",
		ControllerURL: "http://homeassistant.local:8123",
		WebhookID:     "voice_auth_scene",
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, s.CreateHome(context.Background(), h))
	return h
}

func TestStore_InMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	seedUser(t, s, "user-1", "alice")
	u, err := s.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestStore_InMemory_PoolSharesOneDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	seedUser(t, s, "user-1", "alice")

	// Hold the sole pooled connection, then release it shortly after.
	// The lookup below must wait for that connection rather than get a
	// second one, which would carry its own empty database.
	conn, err := s.db.Conn(ctx)
	require.NoError(t, err)
	go func() {
		time.Sleep(50 * time.Millisecond)
		conn.Close()
	}()

	u, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestStore_DeleteUser_CascadesToHomesAndMappings(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1", "alice")
	seedHome(t, s, "home_1", "user-1")

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.UpsertCallerMapping(ctx, &CallerMapping{
		CallerID:  "amzn1.ask.account.AAAA",
		HomeID:    "home_1",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	require.NoError(t, s.DeleteUser(ctx, "user-1"))

	_, err := s.GetHome(ctx, "home_1")
	assert.ErrorIs(t, err, ErrHomeNotFound)

	_, err = s.GetCallerMapping(ctx, "amzn1.ask.account.AAAA")
	assert.ErrorIs(t, err, ErrMappingNotFound)
}

func TestStore_DeleteHome_CascadesToMappings(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-1", "alice")
	seedHome(t, s, "home_1", "user-1")

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.UpsertCallerMapping(ctx, &CallerMapping{
		CallerID:  "caller-1",
		HomeID:    "home_1",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	require.NoError(t, s.DeleteHome(ctx, "home_1"))

	_, err := s.GetCallerMapping(ctx, "caller-1")
	assert.ErrorIs(t, err, ErrMappingNotFound)

	// The owning user survives.
	_, err = s.GetUser(ctx, "user-1")
	assert.NoError(t, err)
}

func TestStore_SchemaIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s1, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	seedUser(t, s1, "user-1", "alice")
	require.NoError(t, s1.Close())

	// Reopening runs schema + migrations again without damage.
	s2, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	u, err := s2.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}
