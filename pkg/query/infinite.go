package query

import (
	"context"
	"sync"
	"time"

	"github.com/salqa/sal/cli/pkg/api"
)

// PageFunc fetches one page of a collection, starting at 1.
type PageFunc[T any] func(ctx context.Context, page int) (*api.Page[T], error)

// Infinite accumulates the pages of one collection in order. Page loads
// are serialized and each page is requested once until the collection's
// kind is invalidated, which starts it over from page 1.
type Infinite[T any] struct {
	cache     *Cache
	base      Key
	staleTime time.Duration
	fetch     PageFunc[T]

	mu    sync.Mutex
	gen   uint64
	pages []api.Page[T]
}

// NewInfinite creates a paginated view over base; base.Page is ignored.
func NewInfinite[T any](cache *Cache, base Key, staleTime time.Duration, fetch PageFunc[T]) *Infinite[T] {
	base.Page = 0
	return &Infinite[T]{
		cache:     cache,
		base:      base,
		staleTime: staleTime,
		fetch:     fetch,
		gen:       cache.Generation(base.Kind),
	}
}

// LoadNextPage fetches the page after the last one held. It returns false
// without a request once the last page is loaded.
func (in *Infinite[T]) LoadNextPage(ctx context.Context) (bool, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.resetIfInvalidated()
	if !in.hasNextLocked() {
		return false, nil
	}

	next := len(in.pages) + 1
	key := in.base
	key.Page = next

	page, err := Fetch(ctx, in.cache, key, in.staleTime, func(ctx context.Context) (*api.Page[T], error) {
		return in.fetch(ctx, next)
	})
	if err != nil {
		return false, err
	}

	in.pages = append(in.pages, *page)
	return true, nil
}

// HasNextPage reports whether LoadNextPage would issue a request.
func (in *Infinite[T]) HasNextPage() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.resetIfInvalidated()
	return in.hasNextLocked()
}

// PagesLoaded returns how many pages are held.
func (in *Infinite[T]) PagesLoaded() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pages)
}

// Items returns every loaded item in page order.
func (in *Infinite[T]) Items() []T {
	in.mu.Lock()
	defer in.mu.Unlock()

	var items []T
	for _, p := range in.pages {
		items = append(items, p.Data...)
	}
	return items
}

// Total is the server-reported item count from the latest page.
func (in *Infinite[T]) Total() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.pages) == 0 {
		return 0
	}
	return in.pages[len(in.pages)-1].Meta.TotalItems
}

// Remove drops loaded items matching pred and returns how many were removed.
func (in *Infinite[T]) Remove(pred func(T) bool) int {
	in.mu.Lock()
	defer in.mu.Unlock()

	removed := 0
	for i := range in.pages {
		// copy: the backing array is shared with the cached page
		kept := make([]T, 0, len(in.pages[i].Data))
		for _, item := range in.pages[i].Data {
			if pred(item) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		in.pages[i].Data = kept
	}
	return removed
}

// Reset drops all loaded pages.
func (in *Infinite[T]) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pages = nil
}

func (in *Infinite[T]) hasNextLocked() bool {
	if len(in.pages) == 0 {
		return true
	}
	return in.pages[len(in.pages)-1].Meta.HasNext()
}

func (in *Infinite[T]) resetIfInvalidated() {
	if gen := in.cache.Generation(in.base.Kind); gen != in.gen {
		in.gen = gen
		in.pages = nil
	}
}
