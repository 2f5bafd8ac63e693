package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute, 5*time.Minute)

	c.Set("key", "value")

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheSetWithExpiration(t *testing.T) {
	c := NewCache(time.Minute, 5*time.Minute)

	c.Set("key", "value", 10*time.Millisecond)

	_, ok := c.Get("key")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestCacheDelete(t *testing.T) {
	c := NewCache(time.Minute, 5*time.Minute)

	c.Set("key", "value")
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCacheFlush(t *testing.T) {
	c := NewCache(time.Minute, 5*time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCacheKeySession(t *testing.T) {
	key := CacheKeySession([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Equal(t, "session:deadbeef", key)
}
