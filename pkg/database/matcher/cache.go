// Zaparoo Tracks
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Tracks.
//
// Zaparoo Tracks is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Tracks is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Tracks.  If not, see <http://www.gnu.org/licenses/>.

package matcher

import (
	"github.com/ZaparooProject/zaparoo-tracks/pkg/helpers/syncutil"
)

// DefaultCacheSize is the number of similarity results kept by an Engine
// created without an explicit cache.
const DefaultCacheSize = 500

// Metric identifies which similarity a cached value belongs to.
type Metric uint8

const (
	MetricEditDistance Metric = iota + 1
	MetricHybrid
)

// PairKey identifies an unordered pair of cleaned strings. Use NewPairKey so
// (a, b) and (b, a) produce the same key.
type PairKey struct {
	A      string
	B      string
	Metric Metric
}

// NewPairKey orders a and b so the key does not depend on argument order.
func NewPairKey(metric Metric, a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Metric: metric, A: a, B: b}
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Len       int    `json:"len"`
	Capacity  int    `json:"capacity"`
}

// Cache stores computed similarity values. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key PairKey) (float64, bool)
	Put(key PairKey, value float64)
	Clear()
	Stats() CacheStats
}

const noEntry = -1

type lruEntry struct {
	key   PairKey
	value float64
	prev  int
	next  int
}

// LRUCache is a fixed capacity least-recently-used Cache. Entries live in a
// slice and are linked by index, most recent first; once full, the least
// recent slot is reused in place.
type LRUCache struct {
	index     map[PairKey]int
	entries   []lruEntry
	mu        syncutil.Mutex
	capacity  int
	head      int
	tail      int
	hits      uint64
	misses    uint64
	evictions uint64
}

// NewLRUCache returns an empty cache holding at most capacity entries. A
// capacity below 1 is raised to 1.
func NewLRUCache(capacity int) *LRUCache {
	capacity = max(capacity, 1)
	return &LRUCache{
		capacity: capacity,
		index:    make(map[PairKey]int, capacity),
		entries:  make([]lruEntry, 0, capacity),
		head:     noEntry,
		tail:     noEntry,
	}
}

// Get returns the cached value for key and marks it most recently used.
func (c *LRUCache) Get(key PairKey) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		c.misses++
		return 0, false
	}
	c.hits++
	c.moveToFront(i)
	return c.entries[i].value, true
}

// Put stores value for key, evicting the least recently used entry when the
// cache is full.
func (c *LRUCache) Put(key PairKey, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[key]; ok {
		c.entries[i].value = value
		c.moveToFront(i)
		return
	}

	var i int
	if len(c.entries) < c.capacity {
		c.entries = append(c.entries, lruEntry{})
		i = len(c.entries) - 1
	} else {
		i = c.tail
		delete(c.index, c.entries[i].key)
		c.unlink(i)
		c.evictions++
	}

	c.entries[i] = lruEntry{key: key, value: value, prev: noEntry, next: noEntry}
	c.index[key] = i
	c.pushFront(i)
}

// Clear drops every entry. Counters are kept.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.index)
	c.entries = c.entries[:0]
	c.head = noEntry
	c.tail = noEntry
}

// Stats returns the current counters.
func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       len(c.index),
		Capacity:  c.capacity,
	}
}

// Keys returns the cached keys from most to least recently used.
func (c *LRUCache) Keys() []PairKey {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]PairKey, 0, len(c.index))
	for i := c.head; i != noEntry; i = c.entries[i].next {
		keys = append(keys, c.entries[i].key)
	}
	return keys
}

// CacheEntry is one cached similarity value.
type CacheEntry struct {
	Key   PairKey
	Value float64
}

// Entries returns the cached entries from most to least recently used
// without touching recency or counters.
func (c *LRUCache) Entries() []CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CacheEntry, 0, len(c.index))
	for i := c.head; i != noEntry; i = c.entries[i].next {
		out = append(out, CacheEntry{Key: c.entries[i].key, Value: c.entries[i].value})
	}
	return out
}

func (c *LRUCache) moveToFront(i int) {
	if c.head == i {
		return
	}
	c.unlink(i)
	c.pushFront(i)
}

func (c *LRUCache) unlink(i int) {
	e := &c.entries[i]
	if e.prev != noEntry {
		c.entries[e.prev].next = e.next
	} else {
		c.head = e.next
	}
	if e.next != noEntry {
		c.entries[e.next].prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = noEntry, noEntry
}

func (c *LRUCache) pushFront(i int) {
	c.entries[i].prev = noEntry
	c.entries[i].next = c.head
	if c.head != noEntry {
		c.entries[c.head].prev = i
	}
	c.head = i
	if c.tail == noEntry {
		c.tail = i
	}
}
