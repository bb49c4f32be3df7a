// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a thread-safe, fixed-capacity least-recently-used (LRU) cache.
The cache evicts the least recently used entry when it reaches capacity.
When created with compression enabled via [New], string and []byte values may be
stored in compressed form and are transparently decompressed by [Cache.Get] and [Cache.Peek].
*/
package lrucache

import (
	"bytes"
	"container/list"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is a fixed-capacity, least-recently-used cache that is safe for concurrent use.
// Instances must be constructed with [New]; the zero value is not ready for use.
type Cache[K comparable, V any] struct {
	size      int                 // Maximum number of entries
	evictList *list.List          // Most recently used at the front
	items     map[K]*list.Element // Keys to their list elements
	lock      sync.RWMutex

	compress bool
	zstdEnc  *zstd.Encoder // Shared encoder for EncodeAll
	zstdDec  *zstd.Decoder // Shared decoder for DecodeAll

	hits   atomic.Uint64
	misses atomic.Uint64
}

// entry is stored in each list element. Exactly one of value and packed is
// meaningful, depending on compressed.
type entry[K comparable, V any] struct {
	key        K
	value      V
	packed     []byte
	compressed bool
}

// New creates a cache holding at most size entries.
//
// If compress is true and V is string or []byte, values are stored
// zstd-compressed when this reduces space. Other value types are stored as is.
//
// It returns an error if size is not a positive integer.
func New[K comparable, V any](size int, compress bool) (*Cache[K, V], error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache[K, V]{
		size:      size,
		evictList: list.New(),
		items:     make(map[K]*list.Element),
	}

	if compress && compressible[V]() {
		// A nil writer/reader allows EncodeAll/DecodeAll without streams.
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.compress = true
		c.zstdEnc = enc
		c.zstdDec = dec
	}

	return c, nil
}

func compressible[V any]() bool {
	var zero V

	switch any(zero).(type) {
	case string, []byte:
		return true
	default:
		return false
	}
}

// Add adds or updates the value for key.
//
// If the key exists, it becomes the most recently used.
// If the cache is at capacity, the least recently used item is evicted.
// Add reports whether an eviction occurred.
func (c *Cache[K, V]) Add(key K, value V) bool {
	// Compress before taking the lock.
	ent := c.prepare(key, value)

	c.lock.Lock()
	defer c.lock.Unlock()

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		el.Value = ent

		return false
	}

	c.items[key] = c.evictList.PushFront(ent)

	evicted := c.evictList.Len() > c.size
	if evicted {
		c.removeOldest()
	}

	return evicted
}

// Get retrieves the value for key and marks it as most recently used.
//
// The second result reports whether the key was found. []byte values are
// returned as copies so callers cannot mutate the cached data.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()

	el, ok := c.items[key]
	if !ok {
		c.lock.Unlock()
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.evictList.MoveToFront(el)

	ent, _ := el.Value.(*entry[K, V])

	c.lock.Unlock()

	v, ok := c.realize(ent)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	return v, ok
}

// Peek retrieves the value for key without modifying the LRU order or the hit counters.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.lock.RLock()

	el, ok := c.items[key]
	if !ok {
		c.lock.RUnlock()

		var zero V

		return zero, false
	}

	ent, _ := el.Value.(*entry[K, V])

	c.lock.RUnlock()

	return c.realize(ent)
}

// Remove deletes the entry associated with key and reports whether it was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)

		return true
	}

	return false
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.evictList.Init()
	clear(c.items)
}

// Keys returns all keys in the cache, from the oldest to the newest.
func (c *Cache[K, V]) Keys() []K {
	c.lock.RLock()
	defer c.lock.RUnlock()

	keys := make([]K, 0, len(c.items))

	for el := c.evictList.Back(); el != nil; el = el.Prev() {
		if ent, ok := el.Value.(*entry[K, V]); ok {
			keys = append(keys, ent.key)
		}
	}

	return keys
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.evictList.Len()
}

// Stats returns the number of Get calls that found and missed a value.
func (c *Cache[K, V]) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache[K, V]) removeOldest() {
	if el := c.evictList.Back(); el != nil {
		c.removeElement(el)
	}
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	c.evictList.Remove(el)

	if ent, ok := el.Value.(*entry[K, V]); ok {
		delete(c.items, ent.key)
	}
}

// prepare builds the entry for value, compressing it when enabled and
// worthwhile. Uncompressed []byte values are copied.
//
// The zstd encoder supports concurrent EncodeAll calls, so prepare runs
// without the lock.
func (c *Cache[K, V]) prepare(key K, value V) *entry[K, V] {
	ent := &entry[K, V]{key: key}

	var raw []byte

	switch v := any(value).(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	}

	if c.compress && len(raw) > 0 {
		if packed := c.zstdEnc.EncodeAll(raw, nil); len(packed) < len(raw) {
			ent.packed = packed
			ent.compressed = true

			return ent
		}
	}

	ent.value = cloneValue(value)

	return ent
}

// realize returns the value held by ent, decompressing it if needed.
// A value that fails to decompress is reported as absent.
func (c *Cache[K, V]) realize(ent *entry[K, V]) (V, bool) {
	var zero V

	if ent == nil {
		return zero, false
	}

	if !ent.compressed {
		return cloneValue(ent.value), true
	}

	if c.zstdDec == nil {
		return zero, false
	}

	decoded, err := c.zstdDec.DecodeAll(ent.packed, nil)
	if err != nil {
		return zero, false
	}

	switch any(zero).(type) {
	case string:
		v, _ := any(string(decoded)).(V)

		return v, true
	case []byte:
		v, _ := any(decoded).(V)

		return v, true
	default:
		return zero, false
	}
}

// cloneValue copies []byte values; other values are returned unchanged.
func cloneValue[V any](v V) V {
	if b, ok := any(v).([]byte); ok && b != nil {
		out, _ := any(bytes.Clone(b)).(V)

		return out
	}

	return v
}
