package cache

import (
	"container/list"
	"sort"
)

// lruEntry is the payload stored in each list element.
type lruEntry[K comparable, V any] struct {
	key   K
	value V
	size  int64
	hits  int64
}

// lru is a fixed-capacity, size-aware least-recently-used cache. It backs
// the in-memory tier of Hierarchy; eviction happens on Put when either the
// entry count or cumulative size would exceed the configured limits.
type lru[K comparable, V any] struct {
	maxEntries int
	maxBytes   int64
	curBytes   int64
	ll         *list.List
	items      map[K]*list.Element
}

func newLRU[K comparable, V any](maxEntries int, maxBytes int64) *lru[K, V] {
	return &lru[K, V]{
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		ll:         list.New(),
		items:      make(map[K]*list.Element),
	}
}

// Get returns the value for key, promotes it to most-recently-used, and
// increments its hit counter (consulted by topHits for hot-paths ranking).
func (c *lru[K, V]) Get(key K) (V, bool) {
	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	c.ll.MoveToFront(el)
	entry := el.Value.(*lruEntry[K, V])
	entry.hits++
	return entry.value, true
}

// Put inserts or updates key, evicting the least-recently-used entries
// until the cache fits within maxEntries and maxBytes.
func (c *lru[K, V]) Put(key K, value V, size int64) {
	if el, ok := c.items[key]; ok {
		old := el.Value.(*lruEntry[K, V])
		c.curBytes += size - old.size
		old.value = value
		old.size = size
		c.ll.MoveToFront(el)
		c.evict()
		return
	}

	el := c.ll.PushFront(&lruEntry[K, V]{key: key, value: value, size: size})
	c.items[key] = el
	c.curBytes += size
	c.evict()
}

// Remove deletes key if present.
func (c *lru[K, V]) Remove(key K) {
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Len returns the number of entries currently cached.
func (c *lru[K, V]) Len() int {
	return c.ll.Len()
}

// Bytes returns the cumulative size of all cached entries.
func (c *lru[K, V]) Bytes() int64 {
	return c.curBytes
}

// Clear empties the cache.
func (c *lru[K, V]) Clear() {
	c.ll.Init()
	c.items = make(map[K]*list.Element)
	c.curBytes = 0
}

// RemoveMatching removes every entry whose key satisfies pred, returning
// the count removed. Used for directory-scoped invalidation where keys are
// prefixed by file path.
func (c *lru[K, V]) RemoveMatching(pred func(K) bool) int {
	var toRemove []*list.Element
	for el := c.ll.Front(); el != nil; el = el.Next() {
		if pred(el.Value.(*lruEntry[K, V]).key) {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		c.removeElement(el)
	}
	return len(toRemove)
}

func (c *lru[K, V]) removeElement(el *list.Element) {
	entry := el.Value.(*lruEntry[K, V])
	c.ll.Remove(el)
	delete(c.items, entry.key)
	c.curBytes -= entry.size
}

// evict removes least-recently-used entries until both limits are satisfied.
func (c *lru[K, V]) evict() {
	for (c.maxEntries > 0 && c.ll.Len() > c.maxEntries) || (c.maxBytes > 0 && c.curBytes > c.maxBytes) {
		oldest := c.ll.Back()
		if oldest == nil {
			return
		}
		c.removeElement(oldest)
	}
}

// evictN removes up to n least-recently-used entries unconditionally,
// returning the number actually removed (fewer than n if the cache empties
// first). Used for pressure-driven batch eviction, independent of the
// maxEntries/maxBytes bounds evict() enforces on Put.
func (c *lru[K, V]) evictN(n int) int {
	removed := 0
	for removed < n {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		removed++
	}
	return removed
}

// hitCount pairs a key with its observed hit count.
type hitCount[K comparable] struct {
	key  K
	hits int64
}

// topHits returns the k keys with the highest hit counts, descending,
// ties broken by most-recently-used order for determinism. k <= 0 returns
// every entry.
func (c *lru[K, V]) topHits(k int) []hitCount[K] {
	all := make([]hitCount[K], 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*lruEntry[K, V])
		all = append(all, hitCount[K]{key: entry.key, hits: entry.hits})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].hits > all[j].hits })
	if k > 0 && k < len(all) {
		all = all[:k]
	}
	return all
}
