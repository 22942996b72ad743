package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_PutAndGet(t *testing.T) {
	cache := NewResultCache(15*time.Minute, testLogger())

	_, ok := cache.Get("res-1")
	assert.False(t, ok)

	cache.Put("res-1", "# Report", "analysis_note.md")

	res, ok := cache.Get("res-1")
	require.True(t, ok)
	assert.Equal(t, "# Report", res.Content)
	assert.Equal(t, "analysis_note.md", res.Filename)
	assert.False(t, res.CreatedAt.IsZero())
}

func TestResultCache_PutOverwrites(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	cache := NewResultCache(15*time.Minute, testLogger())
	cache.now = func() time.Time { return now }

	cache.Put("res-1", "first", "a.md")
	cache.now = func() time.Time { return now.Add(time.Minute) }
	cache.Put("res-1", "second", "b.md")

	res, ok := cache.Get("res-1")
	require.True(t, ok)
	assert.Equal(t, "second", res.Content)
	assert.Equal(t, "b.md", res.Filename)
	assert.Equal(t, now.Add(time.Minute), res.CreatedAt)
}

func TestResultCache_LazyExpiry(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	cache := NewResultCache(15*time.Minute, testLogger())
	cache.now = func() time.Time { return now }

	cache.Put("res-1", "content", "a.md")

	// One nanosecond before the deadline the result is still served.
	cache.now = func() time.Time { return now.Add(15*time.Minute - time.Nanosecond) }
	_, ok := cache.Get("res-1")
	assert.True(t, ok)

	// At the deadline the entry is deleted as a side effect of the read.
	cache.now = func() time.Time { return now.Add(15 * time.Minute) }
	_, ok = cache.Get("res-1")
	assert.False(t, ok)

	// Idempotent: the next read finds nothing either, even at an earlier now.
	cache.now = func() time.Time { return now }
	_, ok = cache.Get("res-1")
	assert.False(t, ok)
}

func TestResultCache_SweepExpired(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	cache := NewResultCache(15*time.Minute, testLogger())

	cache.now = func() time.Time { return now }
	cache.Put("old", "old content", "old.md")
	cache.now = func() time.Time { return now.Add(10 * time.Minute) }
	cache.Put("fresh", "fresh content", "fresh.md")

	removed := cache.SweepExpired(now.Add(16 * time.Minute))
	assert.Equal(t, []string{"old"}, removed)

	cache.now = func() time.Time { return now.Add(16 * time.Minute) }
	_, ok := cache.Get("fresh")
	assert.True(t, ok)

	assert.Empty(t, cache.SweepExpired(now.Add(16*time.Minute)))
}
