// ABOUTME: Tests for the unmapped caller tracker.
// ABOUTME: Covers recording, ordering, removal, and attempt counting.

package tenant

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmappedTracker_RecordAndList(t *testing.T) {
	tr := NewUnmappedTracker()

	tr.Record("caller-a")
	tr.Record("caller-b")
	tr.Record("caller-a")

	list := tr.List()
	require.Len(t, list, 2)

	for _, c := range list {
		if c.CallerID == "caller-a" {
			assert.Equal(t, 2, c.Attempts)
			assert.True(t, c.LastSeen.After(c.FirstSeen) || c.LastSeen.Equal(c.FirstSeen))
		}
	}
}

func TestUnmappedTracker_ListNewestFirst(t *testing.T) {
	tr := NewUnmappedTracker()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := base
	tr.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	tr.Record("oldest")
	tr.Record("middle")
	tr.Record("newest")

	list := tr.List()
	require.Len(t, list, 3)
	assert.Equal(t, "newest", list[0].CallerID)
	assert.Equal(t, "oldest", list[2].CallerID)

	// Touching the oldest caller moves it to the front.
	tr.Record("oldest")
	list = tr.List()
	assert.Equal(t, "oldest", list[0].CallerID)
	assert.Equal(t, 2, list[0].Attempts)
}

func TestUnmappedTracker_RemoveAndClear(t *testing.T) {
	tr := NewUnmappedTracker()
	tr.Record("caller-a")
	tr.Record("caller-b")

	tr.Remove("caller-a")
	assert.Equal(t, 1, tr.Len())

	// Removing an unknown caller is a no-op.
	tr.Remove("nonexistent")
	assert.Equal(t, 1, tr.Len())

	tr.Clear()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.List())
}

func TestUnmappedTracker_ConcurrentRecord(t *testing.T) {
	tr := NewUnmappedTracker()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Record("shared-caller")
		}()
	}
	wg.Wait()

	list := tr.List()
	require.Len(t, list, 1)
	assert.Equal(t, 20, list[0].Attempts)
}
