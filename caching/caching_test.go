package caching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHitCountsWithinWindow(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Flush()

	assert.Equal(t, 1, c.Hit("10.0.0.1"))
	assert.Equal(t, 2, c.Hit("10.0.0.1"))
	assert.Equal(t, 1, c.Hit("10.0.0.2"))
	assert.Equal(t, 2, c.Count("10.0.0.1"))

	c.Reset("10.0.0.1")
	assert.Equal(t, 0, c.Count("10.0.0.1"))
}

func TestHitWindowExpires(t *testing.T) {
	c := NewCache(50 * time.Millisecond)
	defer c.Flush()

	c.Hit("k")
	c.Hit("k")
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, c.Count("k"))
	assert.Equal(t, 1, c.Hit("k"))
}

func TestFlushCancelsContext(t *testing.T) {
	c := NewCache(time.Minute)
	assert.NoError(t, c.Flush())
	assert.Error(t, c.GetCtx().Err())
}
