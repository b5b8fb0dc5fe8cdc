// ABOUTME: Tests for the pending-challenge store.
// ABOUTME: Covers replacement, deletion, snapshots, and concurrent access.

package challenge

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	s := NewStore()

	s.Put(&Challenge{TenantKey: "home_1", Phrase: "ocean four", Intent: "night_scene", CreatedAt: time.Now()})

	c, ok := s.Get("home_1")
	require.True(t, ok)
	assert.Equal(t, "ocean four", c.Phrase)
	assert.Equal(t, "night_scene", c.Intent)
	assert.Equal(t, 0, c.Attempts)
}

func TestStore_Get_Missing(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("nope")
	assert.False(t, ok)
	assert.False(t, s.Has("nope"))
}

func TestStore_Put_ReplacesPrior(t *testing.T) {
	s := NewStore()

	s.Put(&Challenge{TenantKey: "home_1", Phrase: "ocean four", Attempts: 2, CreatedAt: time.Now()})
	s.Put(&Challenge{TenantKey: "home_1", Phrase: "zebra nine", CreatedAt: time.Now()})

	c, ok := s.Get("home_1")
	require.True(t, ok)
	assert.Equal(t, "zebra nine", c.Phrase)
	// Attempt counts never leak from a replaced challenge.
	assert.Equal(t, 0, c.Attempts)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Delete_Idempotent(t *testing.T) {
	s := NewStore()

	s.Put(&Challenge{TenantKey: "home_1", Phrase: "ocean four", CreatedAt: time.Now()})
	s.Delete("home_1")
	assert.False(t, s.Has("home_1"))

	// Deleting again is a no-op.
	s.Delete("home_1")
	assert.Equal(t, 0, s.Len())
}

func TestStore_TenantIsolation(t *testing.T) {
	s := NewStore()

	s.Put(&Challenge{TenantKey: "home_1", Phrase: "ocean four", CreatedAt: time.Now()})
	s.Put(&Challenge{TenantKey: "home_2", Phrase: "zebra nine", CreatedAt: time.Now()})

	s.Delete("home_1")

	c, ok := s.Get("home_2")
	require.True(t, ok)
	assert.Equal(t, "zebra nine", c.Phrase)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Put(&Challenge{TenantKey: "home_1", Phrase: "ocean four", CreatedAt: time.Now()})

	c, _ := s.Get("home_1")
	c.Attempts = 99

	stored, _ := s.Get("home_1")
	assert.Equal(t, 0, stored.Attempts)
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore()
	s.Put(&Challenge{TenantKey: "home_1", Phrase: "ocean four", CreatedAt: time.Now()})
	s.Put(&Challenge{TenantKey: "home_2", Phrase: "zebra nine", CreatedAt: time.Now()})

	snap := s.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, "ocean four", snap["home_1"].Phrase)
	assert.Equal(t, "zebra nine", snap["home_2"].Phrase)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("home_%d", n)
			for j := 0; j < 100; j++ {
				s.Put(&Challenge{TenantKey: key, Phrase: "ocean four", CreatedAt: time.Now()})
				s.Get(key)
				s.Snapshot()
				s.Delete(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, s.Len())
}
