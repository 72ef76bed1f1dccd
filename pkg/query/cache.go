package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/salqa/sal/cli/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// Kind groups cache entries that are invalidated together.
type Kind string

const (
	KindQuestions     Kind = "questions"
	KindQuestion      Kind = "question"
	KindAnswers       Kind = "answers"
	KindNotifications Kind = "notifications"
	KindProfile       Kind = "profile"
	KindUserProfile   Kind = "user-profile"
	KindUserQuestions Kind = "user-questions"
)

// Key identifies one cached query. Zero fields are left out of the string form.
type Key struct {
	Kind     Kind
	ID       int64
	Username string
	Page     int
}

// String renders the key as kind[:id][:username][:page=N].
func (k Key) String() string {
	parts := []string{string(k.Kind)}
	if k.ID != 0 {
		parts = append(parts, strconv.FormatInt(k.ID, 10))
	}
	if k.Username != "" {
		parts = append(parts, k.Username)
	}
	if k.Page > 0 {
		parts = append(parts, "page="+strconv.Itoa(k.Page))
	}
	return strings.Join(parts, ":")
}

type entry struct {
	kind      Kind
	value     interface{}
	fetchedAt time.Time
	stale     bool
}

// Cache is an in-memory query cache. Concurrent fetches of the same key
// share one call; invalidation is by kind.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gens    map[Kind]uint64
	group   singleflight.Group
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		gens:    make(map[Kind]uint64),
		now:     time.Now,
	}
}

// Generation returns how many times kind has been invalidated.
func (c *Cache) Generation(kind Kind) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[kind]
}

// Invalidate marks every entry of the given kinds stale. Fetches already in
// flight for those kinds store their result as stale.
func (c *Cache) Invalidate(kinds ...Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[Kind]bool, len(kinds))
	for _, kind := range kinds {
		set[kind] = true
		c.gens[kind]++
	}
	for _, e := range c.entries {
		if set[e.kind] {
			e.stale = true
		}
	}
	logger.Debug("Invalidated queries", "kinds", kinds)
}

// Peek returns the cached value for key regardless of freshness.
func (c *Cache) Peek(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) fresh(key Key, staleTime time.Duration) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || e.stale || staleTime <= 0 {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= staleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key Key, value interface{}, startGen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = &entry{
		kind:      key.Kind,
		value:     value,
		fetchedAt: c.now(),
		stale:     c.gens[key.Kind] != startGen,
	}
}

// Fetch returns the cached value for key while it is younger than staleTime,
// otherwise runs fn once for all concurrent callers and caches the result.
// Errors are not cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, staleTime time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.fresh(key, staleTime); ok {
		if typed, ok := v.(T); ok {
			logger.Debug("Query cache hit", "key", key.String())
			return typed, nil
		}
	}

	name := key.String()
	ch := c.group.DoChan(name, func() (interface{}, error) {
		startGen := c.Generation(key.Kind)
		logger.Debug("Query cache miss", "key", name)

		// Joined callers must not fail because the first caller went away.
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, v, startGen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("query %s: cached %T, want %T", name, res.Val, zero)
		}
		return typed, nil
	}
}
