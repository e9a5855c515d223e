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

package future

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when the future is not completed in time
var ErrTimeout = errors.New("future timeout")

// Future is a write-once result container. The producer completes it with
// Success or Failure; consumers block in Await.
type Future[T any] struct {
	once    sync.Once
	done    chan struct{}
	success T
	failure error
}

// New creates an instance of Future
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Success completes the future with a value. It returns false when the
// future was already completed.
func (f *Future[T]) Success(value T) bool {
	completed := false
	f.once.Do(func() {
		f.success = value
		close(f.done)
		completed = true
	})
	return completed
}

// Failure completes the future with an error. It returns false when the
// future was already completed.
func (f *Future[T]) Failure(err error) bool {
	completed := false
	f.once.Do(func() {
		f.failure = err
		close(f.done)
		completed = true
	})
	return completed
}

// Done is closed once the future is completed
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the result within timeout. A non-positive timeout waits
// until the context is done.
func (f *Future[T]) Await(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-f.done:
		if f.failure != nil {
			return zero, f.failure
		}
		return f.success, nil
	case <-expired:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
