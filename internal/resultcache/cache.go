package resultcache

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/logger"
)

// Key identifies one memoized load operation. The loader name and its
// effective arguments are separate fields so unrelated loaders can never
// collide, even when their argument strings happen to match.
type Key struct {
	Loader string
	Args   string
}

// NewKey builds a composite key from a loader identity and its arguments.
// Separator characters inside an argument are escaped so distinct argument
// lists can never join to the same key.
func NewKey(loader string, args ...string) Key {
	escaped := make([]string, len(args))
	for i, arg := range args {
		arg = strings.ReplaceAll(arg, `\`, `\\`)
		escaped[i] = strings.ReplaceAll(arg, "|", `\|`)
	}
	return Key{Loader: loader, Args: strings.Join(escaped, "|")}
}

func (k Key) String() string {
	if k.Args == "" {
		return k.Loader
	}
	return k.Loader + "(" + k.Args + ")"
}

type entry struct {
	value    interface{}
	cachedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.cachedAt) >= e.ttl
}

// Cache memoizes the results of expensive read operations for a bounded
// freshness window. One Cache belongs to one interactive session; nothing
// is shared across sessions. Mutations are serialized with a single mutex
// since contention within a session is inherently low.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry
	now     func() time.Time
}

// New creates an empty result cache
func New() *Cache {
	return &Cache{
		entries: make(map[Key]entry),
		now:     time.Now,
	}
}

// GetOrLoad returns the cached value for key, invoking loader only when
// there is no entry or the entry's TTL has elapsed. Loader failures
// propagate to the caller and leave the cache untouched.
func (c *Cache) GetOrLoad(key Key, ttl time.Duration, loader func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !e.expired(c.now()) {
		logger.GetLogger().Debug("Result cache hit", zap.String("key", key.String()))
		return e.value, nil
	}

	logger.GetLogger().Debug("Result cache miss", zap.String("key", key.String()))
	value, err := loader()
	if err != nil {
		return nil, err
	}

	c.entries[key] = entry{value: value, cachedAt: c.now(), ttl: ttl}
	return value, nil
}

// Invalidate removes the given keys. Keys that were never populated are
// ignored. With no keys, the entire cache is cleared (manual refresh).
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(keys) == 0 {
		c.entries = make(map[Key]entry)
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Len returns the number of cached entries, expired ones included
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SetClock overrides the cache's notion of now. Tests use this to step
// time across TTL boundaries without sleeping.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// GetOrLoad retrieves a typed value through the cache with type safety
func GetOrLoad[T any](c *Cache, key Key, ttl time.Duration, loader func() (T, error)) (T, error) {
	value, err := c.GetOrLoad(key, ttl, func() (interface{}, error) {
		return loader()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, errors.NewInternalError("cached value has unexpected type for key "+key.String(), nil)
	}
	return typed, nil
}
