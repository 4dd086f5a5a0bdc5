package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	t.Run("miss on unknown key", func(t *testing.T) {
		c := NewCache(time.Minute)
		_, ok := c.Get("metadata:https://example.com")
		assert.False(t, ok)
	})

	t.Run("hit within TTL", func(t *testing.T) {
		c := NewCache(time.Minute)
		c.Put("summary:https://example.com", "a summary")
		got, ok := c.Get("summary:https://example.com")
		assert.True(t, ok)
		assert.Equal(t, "a summary", got)
	})

	t.Run("expired entry is evicted on read", func(t *testing.T) {
		c := NewCache(time.Minute)
		now := time.Now()
		c.now = func() time.Time { return now }
		c.Put("k", "v")

		c.now = func() time.Time { return now.Add(2 * time.Minute) }
		_, ok := c.Get("k")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("put refreshes the timestamp", func(t *testing.T) {
		c := NewCache(time.Minute)
		now := time.Now()
		c.now = func() time.Time { return now }
		c.Put("k", "old")

		c.now = func() time.Time { return now.Add(45 * time.Second) }
		c.Put("k", "new")

		c.now = func() time.Time { return now.Add(90 * time.Second) }
		got, ok := c.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "new", got)
	})

	t.Run("non-positive TTL falls back to default", func(t *testing.T) {
		c := NewCache(0)
		assert.Equal(t, DefaultCacheTTL, c.ttl)
	})
}
