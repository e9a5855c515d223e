/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package xsync

import (
	"runtime"
	"sync"

	"github.com/zeebo/xxh3"
)

const maxShards = 64

type shard[V any] struct {
	sync.RWMutex
	m map[string]V
}

// ShardedMap is a string-keyed concurrent map split into shards selected by
// an xxh3 hash of the key. It keeps lock contention low when many actors are
// registered and looked up at the same time.
type ShardedMap[V any] struct {
	shards []*shard[V]
	mask   uint64
}

// NewShardedMap creates a ShardedMap sized after the number of CPUs
func NewShardedMap[V any]() *ShardedMap[V] {
	count := 1
	for count < runtime.GOMAXPROCS(0)*4 && count < maxShards {
		count <<= 1
	}

	shards := make([]*shard[V], count)
	for i := range shards {
		shards[i] = &shard[V]{m: make(map[string]V)}
	}
	return &ShardedMap[V]{shards: shards, mask: uint64(count - 1)}
}

func (s *ShardedMap[V]) shardFor(key string) *shard[V] {
	return s.shards[xxh3.HashString(key)&s.mask]
}

// Load returns the value stored under key
func (s *ShardedMap[V]) Load(key string) (V, bool) {
	sh := s.shardFor(key)
	sh.RLock()
	value, ok := sh.m[key]
	sh.RUnlock()
	return value, ok
}

// Store sets the value for key
func (s *ShardedMap[V]) Store(key string, value V) {
	sh := s.shardFor(key)
	sh.Lock()
	sh.m[key] = value
	sh.Unlock()
}

// StoreIfAbsent sets the value for key unless the key already exists.
// It returns false when the key was already present.
func (s *ShardedMap[V]) StoreIfAbsent(key string, value V) bool {
	sh := s.shardFor(key)
	sh.Lock()
	defer sh.Unlock()
	if _, ok := sh.m[key]; ok {
		return false
	}
	sh.m[key] = value
	return true
}

// Delete removes key from the map
func (s *ShardedMap[V]) Delete(key string) {
	sh := s.shardFor(key)
	sh.Lock()
	delete(sh.m, key)
	sh.Unlock()
}

// Len returns the number of entries
func (s *ShardedMap[V]) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.RLock()
		total += len(sh.m)
		sh.RUnlock()
	}
	return total
}

// Values returns a snapshot of the stored values
func (s *ShardedMap[V]) Values() []V {
	values := make([]V, 0, s.Len())
	for _, sh := range s.shards {
		sh.RLock()
		for _, v := range sh.m {
			values = append(values, v)
		}
		sh.RUnlock()
	}
	return values
}

// Reset removes every entry
func (s *ShardedMap[V]) Reset() {
	for _, sh := range s.shards {
		sh.Lock()
		sh.m = make(map[string]V)
		sh.Unlock()
	}
}
