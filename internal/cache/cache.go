// Package cache keeps hot board reads off the database: an in-process L1
// in front of an optional Redis L2, with a circuit breaker guarding the
// network hop.
package cache

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

type Cache interface {
	Set(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	DeletePattern(pattern string) error
	Health() error
	Stats() map[string]interface{}
	Close() error
}

// BoardKey caches one owner's full board list.
func BoardKey(owner string) string {
	return fmt.Sprintf("board:%s", owner)
}

// OwnerPattern matches every cached entry for an owner; mutations
// invalidate with it.
func OwnerPattern(owner string) string {
	return fmt.Sprintf("board:%s*", owner)
}
