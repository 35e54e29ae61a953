// Package caching holds short-lived in-memory counters, such as the
// per-client request counts used to throttle credential endpoints.
package caching

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	memoryCache *cache.Cache
	window      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCache creates a cache whose counters expire after window.
func NewCache(window time.Duration) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		memoryCache: cache.New(window, 2*window),
		window:      window,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Hit increments the counter of key and returns the new value. The first hit
// starts a fresh window.
func (s *Cache) Hit(key string) int {
	if err := s.memoryCache.Add(key, 1, s.window); err == nil {
		return 1
	}
	n, err := s.memoryCache.IncrementInt(key, 1)
	if err != nil {
		// expired between Add and IncrementInt
		s.memoryCache.Set(key, 1, s.window)
		return 1
	}
	return n
}

// Count returns the current counter of key.
func (s *Cache) Count(key string) int {
	v, ok := s.memoryCache.Get(key)
	if !ok {
		return 0
	}
	n, _ := v.(int)
	return n
}

func (s *Cache) Reset(key string) {
	s.memoryCache.Delete(key)
}

func (s *Cache) Window() time.Duration {
	return s.window
}

func (s *Cache) Flush() error {
	s.memoryCache.Flush()
	s.cancel()
	return nil
}

func (s *Cache) GetCtx() context.Context {
	return s.ctx
}
