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
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedMap(t *testing.T) {
	m := NewShardedMap[int]()

	m.Store("a", 1)
	value, ok := m.Load("a")
	require.True(t, ok)
	assert.Equal(t, 1, value)

	assert.False(t, m.StoreIfAbsent("a", 2))
	assert.True(t, m.StoreIfAbsent("b", 2))
	assert.Equal(t, 2, m.Len())
	assert.ElementsMatch(t, []int{1, 2}, m.Values())

	m.Delete("a")
	_, ok = m.Load("a")
	assert.False(t, ok)

	m.Reset()
	assert.Zero(t, m.Len())
}

func TestShardedMapConcurrency(t *testing.T) {
	m := NewShardedMap[int]()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := range 100 {
				m.Store(fmt.Sprintf("%d-%d", worker, j), j)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 800, m.Len())
}
